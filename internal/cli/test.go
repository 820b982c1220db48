package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RatTrap1337/Zoho-Attendance-Manager/internal/scheduler"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Validate configuration and test credential retrieval",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		var failed bool
		report := func(name string, err error) {
			if err != nil {
				failed = true
				cmd.Printf("FAIL  %s: %v\n", name, err)
				return
			}
			cmd.Printf("ok    %s\n", name)
		}

		report("check-in schedule "+a.cfg.CheckInCron, scheduler.Validate(a.cfg.CheckInCron))
		report("check-out schedule "+a.cfg.CheckOutCron, scheduler.Validate(a.cfg.CheckOutCron))

		_, err = a.cfg.Location()
		report("timezone "+a.cfg.Timezone, err)

		if !a.cfg.HasCredentials() {
			report("credentials", fmt.Errorf("one or more of ZOHO_CLIENT_ID, ZOHO_CLIENT_SECRET, ZOHO_REFRESH_TOKEN is missing"))
		} else {
			_, err = a.cache.AccessToken(cmd.Context())
			report("token retrieval", err)
		}

		if failed {
			return fmt.Errorf("configuration test failed")
		}
		return nil
	},
}
