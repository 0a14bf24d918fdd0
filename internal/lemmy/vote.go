package lemmy

// VoteType is the direction the user asked for, not the score to send.
type VoteType int

const (
	Upvote VoteType = iota
	Downvote
)

// NewVote computes the score to request given the item's current vote.
// Voting the same direction again clears the vote; an opposite vote
// becomes the new direction. The server owns the resulting aggregates.
func NewVote(currentVote int, vote VoteType) int {
	if vote == Upvote {
		if currentVote == 1 {
			return 0
		}
		return 1
	}
	if currentVote == -1 {
		return 0
	}
	return -1
}
