package adapter

// MutualMetrics records mutual connection activity.
type MutualMetrics interface {
	GroupCreated(plan string, invites int)
	InviteResponded(accepted bool)
	GroupPromoted(plan string)
	GroupStalled()
}
