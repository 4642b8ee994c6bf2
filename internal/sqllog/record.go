package sqllog

import "strconv"

// Record is one parsed dmsql trace entry. Optional fields are nil when the
// source carried a literal NULL (absent is distinct from empty).
type Record struct {
	OccurrenceTime  string  `json:"occurrence_time"`
	Endpoint        int     `json:"ep"`
	Session         *string `json:"session,omitempty"`
	Thread          *string `json:"thread,omitempty"`
	User            *string `json:"user,omitempty"`
	TrxID           *string `json:"trx_id,omitempty"`
	Statement       *string `json:"statement,omitempty"`
	AppName         *string `json:"appname,omitempty"`
	IP              *string `json:"ip,omitempty"`
	SQLType         *string `json:"sql_type,omitempty"`
	Description     string  `json:"description"`
	ExecuteTimeMS   *int64  `json:"execute_time,omitempty"`
	RowCount        *int64  `json:"rowcount,omitempty"`
	ExecuteID       *int64  `json:"execute_id,omitempty"`
}

// FieldNames returns the column names used by exporters, in export order.
func FieldNames() []string {
	return []string{
		"occurrence_time",
		"ep",
		"session",
		"thread",
		"user",
		"trx_id",
		"statement",
		"appname",
		"ip",
		"sql_type",
		"description",
		"execute_time",
		"rowcount",
		"execute_id",
	}
}

// FieldValues returns the record's values as strings, matching FieldNames.
// Absent optionals render as the empty string.
func (r *Record) FieldValues() []string {
	return []string{
		r.OccurrenceTime,
		strconv.Itoa(r.Endpoint),
		strOrEmpty(r.Session),
		strOrEmpty(r.Thread),
		strOrEmpty(r.User),
		strOrEmpty(r.TrxID),
		strOrEmpty(r.Statement),
		strOrEmpty(r.AppName),
		strOrEmpty(r.IP),
		strOrEmpty(r.SQLType),
		r.Description,
		intOrEmpty(r.ExecuteTimeMS),
		intOrEmpty(r.RowCount),
		intOrEmpty(r.ExecuteID),
	}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOrEmpty(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
