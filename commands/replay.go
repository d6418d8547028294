package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/zeu5/fights/gomoku"
	"github.com/zeu5/fights/types"
	"github.com/zeu5/fights/util"
)

// Replay prints a summary line for every trace recorded in path and the
// final board of the selected episode, or of every episode when episode
// is negative.
func Replay(out io.Writer, path string, episode int) (int, error) {
	i := 0
	err := util.ReadJSONLZstd(path, func(line []byte) error {
		trace := types.NewTrace[gomoku.Action, gomoku.Board]()
		if err := trace.UnmarshalJSON(line); err != nil {
			return fmt.Errorf("episode %d: %w", i, err)
		}
		defer func() { i++ }()
		if episode >= 0 && episode != i {
			return nil
		}
		last, ok := trace.Last()
		if !ok {
			fmt.Fprintf(out, "Episode %d: empty\n", i)
			return nil
		}
		result := "unfinished"
		if last.Result.Done {
			result = "won by " + last.Participant.ID
		}
		fmt.Fprintf(out, "Episode %d: %d steps, %s\n", i, trace.Len(), result)
		fmt.Fprint(out, gomoku.Render(last.Result.State))
		return nil
	})
	return i, err
}

func ReplayCommand() *cobra.Command {
	var episode int
	cmd := &cobra.Command{
		Use:   "replay TRACES",
		Short: "Print the games recorded in a traces file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := Replay(cmd.OutOrStdout(), args[0], episode)
			return err
		},
	}
	cmd.Flags().IntVar(&episode, "episode", -1, "Only print this episode")
	return cmd
}
