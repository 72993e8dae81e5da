package domain

// ProofOfWork defines the PoW entity, including the challenge and difficulty.
type ProofOfWork struct {
	Challenge  []byte
	Difficulty uint64
}

// Snapshot is an immutable view of a session after an event.
// Index is -1 while no quote has been shown yet.
type Snapshot struct {
	Session  string `json:"session"`
	Quote    string `json:"quote"`
	Index    int    `json:"index"`
	Clicks   int    `json:"clicks"`
	Fallback bool   `json:"fallback,omitempty"`
}

// Shown reports whether the snapshot carries a sampled quote rather than the greeting.
func (s Snapshot) Shown() bool {
	return s.Clicks > 0
}
