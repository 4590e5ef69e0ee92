// Command bizadmin serves the users and the crm reference data of a business.
package main

import (
	"context"
	"fmt"

	"github.com/go-arrower/bizadmin"
	"github.com/go-arrower/bizadmin/cmd"
	authinit "github.com/go-arrower/bizadmin/contexts/auth/init"
	crminit "github.com/go-arrower/bizadmin/contexts/crm/init"
)

func main() {
	cmd.Execute(func(ctx context.Context, di *bizadmin.Container) error {
		if _, err := authinit.NewAuthContext(ctx, di); err != nil {
			return fmt.Errorf("could not initialise auth: %w", err)
		}

		if _, err := crminit.NewCRMContext(ctx, di); err != nil {
			return fmt.Errorf("could not initialise crm: %w", err)
		}

		return nil
	})
}
