package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/RatTrap1337/Zoho-Attendance-Manager/internal/scheduler"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the recurring check-in/check-out scheduler",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		sched, err := scheduler.New(scheduler.Config{Timezone: a.cfg.Timezone}, a.log)
		if err != nil {
			return err
		}
		if err := sched.Add("checkin", a.cfg.CheckInCron, func(ctx context.Context) error {
			_, err := a.client.CheckIn(ctx)
			return err
		}); err != nil {
			return err
		}
		if err := sched.Add("checkout", a.cfg.CheckOutCron, func(ctx context.Context) error {
			_, err := a.client.CheckOut(ctx)
			return err
		}); err != nil {
			return err
		}

		// cmd.Context() is cancelled on SIGINT/SIGTERM (wired in main).
		ctx := cmd.Context()
		a.log.Info("scheduler starting")
		sched.Start(ctx)

		<-ctx.Done()
		sched.Stop()
		return nil
	},
}
