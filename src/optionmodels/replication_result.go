package optionmodels

// ReplicationResult is the output of one replication call. Variance is NaN
// when the leg set is empty or malformed; Vol is NaN whenever Variance is
// NaN or negative.
type ReplicationResult struct {
	Vol      float64
	Variance float64
	NumLegs  int
	Legs     []ReplicationLeg
}
