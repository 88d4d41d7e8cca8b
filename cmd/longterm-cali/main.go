// Command longterm-cali renders the long-term lidar calibration figure of a
// processed campaign.
package main

import "github.com/pollynet/longterm-cali/cmd/longterm-cali/cmd"

func main() {
	cmd.Execute()
}
