package constants

const (
	MsgSaveSucceeded   = "Flight saved successfully."
	MsgDeleteSucceeded = "Flight deleted successfully."
	MsgDeleteConfirm   = "Are you sure you want to delete this flight?"
	MsgKPILoadFailed   = "Error loading KPIs. Check the server logs."
	MsgChartLoadFailed = "Error loading charts. Check the server logs."
	MsgTableLoadFailed = "Error loading flights"
	MsgChartBuildError = "Chart could not be rendered"
	MsgMissingRecordID = "Flight id is required"
)
