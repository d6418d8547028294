package commands

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zeu5/fights/gomoku"
	"github.com/zeu5/fights/types"
)

// Play runs a game between two people sharing a terminal. Moves are read
// from in as "x y", one per line. It returns the winner, if any, once the
// game ends or in runs out.
func Play(in io.Reader, out io.Writer, env *gomoku.Env) (types.Participant, bool, error) {
	env.Reset()
	scanner := bufio.NewScanner(in)
	participants := env.Participants()
	turn := 0

	for {
		fmt.Fprint(out, env.Render())
		if env.Done() {
			winner, _ := env.Winner()
			fmt.Fprintf(out, "Player %s wins\n", winner)
			return winner, true, nil
		}
		if env.Full() {
			fmt.Fprintln(out, "Draw")
			return types.Participant{}, false, nil
		}

		p := participants[turn]
		for {
			fmt.Fprintf(out, "Player %s > ", p)
			if !scanner.Scan() {
				fmt.Fprintln(out)
				return types.Participant{}, false, scanner.Err()
			}
			a, err := parseAction(scanner.Text())
			if err == nil {
				err = env.Validate(p, a)
			}
			if err != nil {
				fmt.Fprintf(out, "Invalid move: %s\n", err)
				continue
			}
			env.Step(p, a)
			break
		}
		turn = (turn + 1) % len(participants)
	}
}

func parseAction(line string) (gomoku.Action, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return gomoku.Action{}, fmt.Errorf("expected \"x y\", got %q", line)
	}
	var a gomoku.Action
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return gomoku.Action{}, fmt.Errorf("%q is not a number", f)
		}
		a[i] = v
	}
	return a, nil
}

func PlayCommand() *cobra.Command {
	var width int
	var height int
	var winCondition int

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play gomoku against another person in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("width") {
				width = cfg.Gomoku.Width
			}
			if !cmd.Flags().Changed("height") {
				height = cfg.Gomoku.Height
			}
			if !cmd.Flags().Changed("win") {
				winCondition = cfg.Gomoku.WinCondition
			}
			env, err := gomoku.New(width, height, winCondition, [2]types.Participant{
				{ID: cfg.Gomoku.Participants[0]},
				{ID: cfg.Gomoku.Participants[1]},
			})
			if err != nil {
				return err
			}
			_, _, err = Play(cmd.InOrStdin(), cmd.OutOrStdout(), env)
			return err
		},
	}
	cmd.Flags().IntVar(&width, "width", 10, "Width of the board")
	cmd.Flags().IntVar(&height, "height", 10, "Height of the board")
	cmd.Flags().IntVar(&winCondition, "win", 5, "Stones in a row needed to win")
	return cmd
}
