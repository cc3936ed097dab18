package constants

// Signature verification outcomes for a parsed mail, ordered by
// severity so results can be merged by taking the maximum.
const (
	SIGNATURE_OK          int = 0
	SIGNATURE_NOT_SIGNED  int = 1
	SIGNATURE_NO_VERIFIER int = 2
	SIGNATURE_FAILED      int = 3
)
