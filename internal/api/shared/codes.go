package shared

// Error codes returned in the "code" field of every error response.
// Clients branch on these rather than on the message text.
const (
	CodeUserNotFound       = "U001"
	CodeDeletedUser        = "U002"
	CodeColorNotFound      = "C001"
	CodeDiaryNotFound      = "D001"
	CodeInviteCodeNotFound = "D002"
	CodeDiaryFull          = "D003"
	CodeMemberExists       = "D004"
	CodeMemberOuted        = "D005"
	CodeNotDiaryMember     = "D006"
	CodeProgressedHistory  = "H001"
	CodeHistoryNotFound    = "H002"
	CodeInvalidToken       = "A001"
	CodeExpiredToken       = "A002"
	CodeMissingToken       = "A003"
	CodeValidation         = "V001"
	CodeRateLimited        = "R001"
	CodeInternal           = "S001"
)
