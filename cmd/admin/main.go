// Command admin is the Mesa Técnica operations CLI.
//
// Usage:
//
//	mesa-admin matches list --status scheduled,live
//	mesa-admin game boxscore --id <game-id>
//	mesa-admin game finalize --id <game-id> --confirm
//	mesa-admin game reset --id <game-id> --confirm
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ligaboreal/mesa-tecnica/internal/config"
	"github.com/ligaboreal/mesa-tecnica/internal/db"
	"github.com/ligaboreal/mesa-tecnica/internal/engine"
	"github.com/ligaboreal/mesa-tecnica/internal/game"
	"github.com/ligaboreal/mesa-tecnica/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "mesa-admin",
		Short: "Mesa Técnica operations CLI",
	}

	root.AddCommand(matchesCmd())
	root.AddCommand(gameCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// matches command
// --------------------------------------------------------------------------

func matchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matches",
		Short: "Inspect the match catalog",
	}
	cmd.AddCommand(matchesListCmd())
	return cmd
}

func matchesListCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List games by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithManager(func(ctx context.Context, mgr *engine.Manager) error {
				var statuses []game.Status
				for _, part := range strings.Split(status, ",") {
					if s := strings.TrimSpace(part); s != "" {
						statuses = append(statuses, game.Status(s))
					}
				}

				games, err := mgr.Matches(ctx, statuses...)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSTATUS\tPERIOD\tCLOCK\tMATCH\tSCORE\tSTARTS")
				for _, g := range games {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s - %s\t%d - %d\t%s\n",
						g.ID, g.Status, game.PeriodLabel(g.Period), game.ClockStamp(g.Clock),
						g.Local.Name, g.Visiting.Name,
						g.Local.Score, g.Visiting.Score,
						g.StartsAt.Format(time.RFC3339))
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "scheduled,live", "Comma-separated statuses")
	return cmd
}

// --------------------------------------------------------------------------
// game command
// --------------------------------------------------------------------------

func gameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Operate on a single game",
	}
	cmd.AddCommand(gameBoxscoreCmd())
	cmd.AddCommand(gameFinalizeCmd())
	cmd.AddCommand(gameResetCmd())
	return cmd
}

func gameBoxscoreCmd() *cobra.Command {
	var gameID string
	cmd := &cobra.Command{
		Use:   "boxscore",
		Short: "Print the stat ledger for a game",
		RunE: func(cmd *cobra.Command, args []string) error {
			if gameID == "" {
				return fmt.Errorf("--id is required")
			}
			return runWithManager(func(ctx context.Context, mgr *engine.Manager) error {
				s, err := mgr.Session(ctx, gameID)
				if err != nil {
					return err
				}
				box, err := s.BoxScore(ctx)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
				fmt.Fprintln(w, "SIDE\tTEAM\tPLAYER\tPTS\tREB\tAST\tSTL\tBLK\t3PM\tFOULS\tEJ")
				printRows := func(side game.Side, rows []game.PlayerStats) {
					for _, row := range rows {
						ej := ""
						if row.Ejected {
							ej = "X"
						}
						fmt.Fprintf(w, "%s\t%s\t#%d %s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
							side, row.TeamName, row.Number, row.Name,
							row.Points, row.Rebounds, row.Assists, row.Steals, row.Blocks,
							row.ThreesMade, row.TotalFouls(), ej)
					}
				}
				printRows(game.SideLocal, box.Local)
				printRows(game.SideVisiting, box.Visiting)
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&gameID, "id", "", "Game ID")
	return cmd
}

func gameFinalizeCmd() *cobra.Command {
	var (
		gameID  string
		confirm bool
	)
	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Close a game and commit standings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if gameID == "" {
				return fmt.Errorf("--id is required")
			}
			if !confirm {
				return fmt.Errorf("finalize is destructive; pass --confirm")
			}
			return runWithManager(func(ctx context.Context, mgr *engine.Manager) error {
				s, err := mgr.Session(ctx, gameID)
				if err != nil {
					return err
				}
				res, err := s.Finalize(ctx)
				if err != nil {
					return err
				}
				logger.Info("Game finalized",
					"game", gameID, "winner", res.Winner,
					"score", fmt.Sprintf("%d-%d", res.LocalScore, res.VisitingScore))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&gameID, "id", "", "Game ID")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm the destructive action")
	return cmd
}

func gameResetCmd() *cobra.Command {
	var (
		gameID  string
		confirm bool
	)
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Wipe a game back to its pre-game state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if gameID == "" {
				return fmt.Errorf("--id is required")
			}
			if !confirm {
				return fmt.Errorf("reset is destructive; pass --confirm")
			}
			return runWithManager(func(ctx context.Context, mgr *engine.Manager) error {
				s, err := mgr.Session(ctx, gameID)
				if err != nil {
					return err
				}
				if err := s.Reset(ctx); err != nil {
					return err
				}
				logger.Info("Game reset", "game", gameID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&gameID, "id", "", "Game ID")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm the destructive action")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runWithManager handles config loading, DB connection, and context
// cancellation around a single admin operation.
func runWithManager(fn func(ctx context.Context, mgr *engine.Manager) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	mgr := engine.NewManager(store.NewPostgres(pool), cfg.Rules(), cfg.ClockTick, logger)
	defer mgr.Close()

	return fn(ctx, mgr)
}
