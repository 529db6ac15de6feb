package dto

// EnsureResult summarises one subscription lifecycle pass.
type EnsureResult struct {
	Created int
	Renewed int
	Failed  int
}
