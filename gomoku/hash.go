package gomoku

import (
	"strconv"

	"github.com/zeu5/fights/types"
)

// Hash encodes the board with one character per cell in row-major order
func Hash(board Board) string {
	b := make([]byte, 0, board.Size())
	for v := range board.Values() {
		b = append(b, byte('0'+v))
	}
	return string(b)
}

func HashAction(a Action) string {
	return strconv.Itoa(a[0]) + "," + strconv.Itoa(a[1])
}

// NewBonusPolicy is an exploring player for p
func NewBonusPolicy(p types.Participant, config types.BonusConfig) *types.BonusPolicy[Action, Board] {
	return types.NewBonusPolicy[Action, Board](p, config, Hash, HashAction)
}
