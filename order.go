package concord

import "sort"

// Ordering of sibling entities. The service hands out a denormalized
// rawPosition hint that may be duplicated or non-contiguous while edits
// are in flight, so the observable order is always recomputed from
// current raw values: primary key rawPosition ascending, ties broken by
// identity ascending compared as full-width unsigned integers.

func sortRoles(roles []*Role) {
	sort.SliceStable(roles, func(i, j int) bool {
		if roles[i].RawPosition != roles[j].RawPosition {
			return roles[i].RawPosition < roles[j].RawPosition
		}
		return roles[i].ID < roles[j].ID
	})
}

func sortChannels(channels []*Channel) {
	sort.SliceStable(channels, func(i, j int) bool {
		if channels[i].RawPosition != channels[j].RawPosition {
			return channels[i].RawPosition < channels[j].RawPosition
		}
		return channels[i].ID < channels[j].ID
	})
}

// orderGroup maps channel kinds onto ordering groups. The service
// displays text and announcement channels interleaved, likewise voice
// and stage, so each pair shares a group. Categories order against
// other categories only.
func orderGroup(t ChannelType) int {
	switch t {
	case ChannelText, ChannelAnnouncement:
		return 0
	case ChannelVoice, ChannelStage:
		return 1
	case ChannelCategory:
		return 2
	}
	return 0
}

// SortedSiblings returns the channels this channel is ordered against:
// same ordering group and, for non-categories, the same parent
// category. The result includes the receiver.
func (c *Channel) SortedSiblings() []*Channel {
	if c.guild == nil {
		return []*Channel{c}
	}
	group := orderGroup(c.Type)
	siblings := make([]*Channel, 0, 8)
	c.guild.Channels.ForEach(func(other *Channel) {
		if orderGroup(other.Type) != group {
			return
		}
		if !c.IsCategory() && other.ParentID != c.ParentID {
			return
		}
		siblings = append(siblings, other)
	})
	sortChannels(siblings)
	return siblings
}

// Position is the 0-based rank of the channel within its sibling
// group, recomputed on every call.
func (c *Channel) Position() int {
	for i, sib := range c.SortedSiblings() {
		if sib.ID == c.ID {
			return i
		}
	}
	return 0
}

// Compare orders two channels for hierarchy purposes: derived positions
// first, identity ascending on a tie. Positive means c ranks after
// other.
func (c *Channel) Compare(other *Channel) int {
	pc, po := c.Position(), other.Position()
	if pc != po {
		return pc - po
	}
	return c.ID.Compare(other.ID)
}
