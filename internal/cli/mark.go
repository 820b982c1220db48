package cli

import (
	"github.com/spf13/cobra"

	"github.com/RatTrap1337/Zoho-Attendance-Manager/internal/zoho"
)

var checkinCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Mark one check-in now",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return markOnce(cmd, zoho.DirectionIn)
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Mark one check-out now",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return markOnce(cmd, zoho.DirectionOut)
	},
}

// markOnce runs a single attendance call. Unlike scheduled fires, a manual
// invocation propagates the error to the process exit code.
func markOnce(cmd *cobra.Command, dir zoho.Direction) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	var ev zoho.Event
	switch dir {
	case zoho.DirectionIn:
		ev, err = a.client.CheckIn(cmd.Context())
	default:
		ev, err = a.client.CheckOut(cmd.Context())
	}
	if err != nil {
		return err
	}

	cmd.Printf("%s at %s: %s\n", dir, ev.Timestamp, ev.Body)
	return nil
}
