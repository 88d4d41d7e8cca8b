// Package matfile reads and writes level-5 MAT files, the array-exchange
// format the upstream processing chain uses for its plotting bundles.
//
// Only the subset needed for plotting bundles is supported: full numeric and
// logical arrays (real part), char arrays, structs, cell arrays, and
// zlib-compressed elements. Sparse, object and HDF5-based (v7.3) files are
// rejected with ErrUnsupported.
package matfile
