// Package permissions models Concord capability sets: named bits packed
// into a 64-bit unsigned integer, a mutable/frozen Bitfield wrapper, and
// the per-resource allow/deny Overwrite applied on top of role grants.
package permissions

// Capability bits. Each constant names one bit of a capability set.
const (
	CreateInvites      uint64 = 1 << 0
	KickMembers        uint64 = 1 << 1
	BanMembers         uint64 = 1 << 2
	Administrator      uint64 = 1 << 3
	ManageChannels     uint64 = 1 << 4
	ManageGuild        uint64 = 1 << 5
	AddReactions       uint64 = 1 << 6
	ViewAuditLog       uint64 = 1 << 7
	PrioritySpeaker    uint64 = 1 << 8
	Stream             uint64 = 1 << 9
	ViewChannel        uint64 = 1 << 10
	SendMessages       uint64 = 1 << 11
	SendTTSMessages    uint64 = 1 << 12
	ManageMessages     uint64 = 1 << 13
	EmbedLinks         uint64 = 1 << 14
	AttachFiles        uint64 = 1 << 15
	ReadMessageHistory uint64 = 1 << 16
	MentionEveryone    uint64 = 1 << 17
	UseExternalEmojis  uint64 = 1 << 18
	ViewGuildInsights  uint64 = 1 << 19
	Connect            uint64 = 1 << 20
	Speak              uint64 = 1 << 21
	MuteMembers        uint64 = 1 << 22
	DeafenMembers      uint64 = 1 << 23
	MoveMembers        uint64 = 1 << 24
	UseVAD             uint64 = 1 << 25
	ChangeNickname     uint64 = 1 << 26
	ManageNicknames    uint64 = 1 << 27
	ManageRoles        uint64 = 1 << 28
	ManageWebhooks     uint64 = 1 << 29
	ManageExpressions  uint64 = 1 << 30
	UseApplicationCmds uint64 = 1 << 31
	RequestToSpeak     uint64 = 1 << 32
	ManageEvents       uint64 = 1 << 33
	ManageThreads      uint64 = 1 << 34
	CreatePublicThread uint64 = 1 << 35
	SendVoiceMessages  uint64 = 1 << 36
	ModerateMembers    uint64 = 1 << 40
)

// All is the union of every defined capability bit.
const All = CreateInvites | KickMembers | BanMembers | Administrator |
	ManageChannels | ManageGuild | AddReactions | ViewAuditLog |
	PrioritySpeaker | Stream | ViewChannel | SendMessages |
	SendTTSMessages | ManageMessages | EmbedLinks | AttachFiles |
	ReadMessageHistory | MentionEveryone | UseExternalEmojis |
	ViewGuildInsights | Connect | Speak | MuteMembers | DeafenMembers |
	MoveMembers | UseVAD | ChangeNickname | ManageNicknames |
	ManageRoles | ManageWebhooks | ManageExpressions |
	UseApplicationCmds | RequestToSpeak | ManageEvents | ManageThreads |
	CreatePublicThread | SendVoiceMessages | ModerateMembers

// Suspended is the subset that survives an active communication
// restriction: a suspended member can still perceive the resource but
// not interact with it.
const Suspended = ViewChannel | ReadMessageHistory

// Apply computes one overwrite step: deny bits are subtracted before
// allow bits are added, so a bit set in both resolves to allowed only
// when the allow comes from the same step.
func Apply(base, deny, allow uint64) uint64 {
	return (base &^ deny) | allow
}
