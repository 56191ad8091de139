package dispatch

// Bridge (filesystem-bridge-facing) verbs.
const (
	FDTest         = "FD_TEST"
	FDLog          = "FD_LOG"
	FDGetPath      = "FD_GET_PATH"
	FDGetPathWrite = "FD_GET_PATH_WRITE"
	FDIfDir        = "FD_IF_DIR"
	FDReadDir      = "FD_READ_DIR"
	FDMkdir        = "FD_MKDIR"
	FDRmdir        = "FD_RMDIR"
	FDUnlink       = "FD_UNLINK"
	FDRename       = "FD_RENAME"
	FDTruncate     = "FD_TRUNCATE"
	FDUpdate       = "FD_UPDATE"
	FDAddTemp      = "FD_ADD_TEMP" // deprecated: see SPEC_FULL.md §9
	FDExit         = "FD_EXIT"
)

// Operator (control-CLI-facing) verbs.
const (
	QHTest      = "QH_TEST"
	QHExit      = "QH_EXIT"
	QHTag       = "QH_TAG"
	QHUntag     = "QH_UNTAG"
	QHNest      = "QH_NEST"
	QHUnnest    = "QH_UNNEST"
	QHStats     = "QH_STATS"
	QHSearch    = "QH_SEARCH"
	QHCreateTag = "QH_CREATE_TAG"
	QHDeleteTag = "QH_DELETE_TAG"
	QHGetTags   = "QH_GET_TAGS"
)

// Reply tokens.
const (
	ReplyAck      = "TM_ACK"
	ReplyTrue     = "TM_TRUE"
	ReplyFalse    = "TM_FALSE"
	ReplyFail     = "TM_FAIL"
	ReplyCycleErr = "Cyclic check error."
	ReplyInvalid  = "Invalid"
)

// argSeparator splits the comma-delimited arguments of a payload (mirrors
// the original's splitAtFirstOccurance convention applied repeatedly).
const argSeparator = ","
