package bundle

import "github.com/pollynet/longterm-cali/internal/domain/calibration"

// Top-level variable and struct field names.
const (
	FieldDPI            = "figDPI"
	FieldLCTime         = "LCTime"
	FieldLogbookTime    = "logbookTime"
	FieldOverlap        = "flagOverlap"
	FieldWindowWipe     = "flagWindowwipe"
	FieldFlashlamps     = "flagFlashlamps"
	FieldPulsePower     = "flagPulsepower"
	FieldRestart        = "flagRestart"
	FieldNDChange       = "flag_CH_NDChange"
	FieldElseTime       = "else_time"
	FieldElseLabel      = "else_label"
	FieldDepolTime532   = "depolCaliTime532"
	FieldDepolConst532  = "depolCaliConst532"
	FieldYLim355        = "yLim355"
	FieldYLim532        = "yLim532"
	FieldYLim1064       = "yLim1064"
	FieldDepolLim532    = "depolConstLim532"
	FieldCampaignInfo   = "campaignInfo"
	FieldTaskInfo       = "taskInfo"
	FieldProcessInfo    = "processInfo"
	FieldName           = "name"
	FieldLocation       = "location"
	FieldStartTime      = "startTime"
	FieldDataTime       = "dataTime"
	FieldProgramVersion = "programVersion"
	FieldFontName       = "fontname"
)

// HistoryField returns the lidar-constant history variable of ch.
func HistoryField(ch calibration.Channel) string {
	return "LC" + string(ch) + "History"
}

// StatusField returns the status variable of ch.
func StatusField(ch calibration.Channel) string {
	return "LC" + string(ch) + "Status"
}

// SelectorField returns the ND-change column selector variable of ch.
func SelectorField(ch calibration.Channel) string {
	if ch == calibration.Channel532Cross {
		return "flagCH532FR_X"
	}

	return "flagCH" + string(ch) + "FR"
}
