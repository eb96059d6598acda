package instrumentation

// Operation types recorded on calendar API metrics and spans.
const (
	OperationList     = "list"
	OperationGet      = "get"
	OperationCreate   = "create"
	OperationUpdate   = "update"
	OperationDelete   = "delete"
	OperationSearch   = "search"
	OperationFreeBusy = "freebusy"
)

// Calendar label values produced by CalendarLabel.
const (
	CalendarPrimary   = "primary"
	CalendarSecondary = "secondary"
)

// CalendarLabel reduces a calendar ID to a bounded label value.
// Calendar IDs are email-like strings and must never become label values.
//
//	CalendarLabel("primary")                      // "primary"
//	CalendarLabel("")                             // "primary"
//	CalendarLabel("team@group.calendar.google.com") // "secondary"
func CalendarLabel(calendarID string) string {
	if calendarID == "" || calendarID == CalendarPrimary {
		return CalendarPrimary
	}
	return CalendarSecondary
}
