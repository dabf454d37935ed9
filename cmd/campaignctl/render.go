package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/blues/campaignd/internal/model"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// appLogic 变更命令使用的编排层操作
type appLogic interface {
	Donate(ctx context.Context, id int64, amount string) error
	WithdrawFunds(ctx context.Context, id int64) error
	DeleteCampaign(ctx context.Context, id int64) error
}

func runMutation(cmd *cobra.Command, opts *options, progress, done string, fn func(appLogic) error) error {
	app, err := openApp(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer app.Close()

	spinner, _ := pterm.DefaultSpinner.Start(progress)
	if err := fn(app.Logic); err != nil {
		spinner.Fail(err.Error())
		return err
	}
	spinner.Success(done)
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid campaign id %q", s)
	}
	return id, nil
}

func campaignTable(campaigns []model.Campaign) pterm.TableData {
	data := pterm.TableData{{"ID", "Title", "Owner", "Target", "Collected", "Deadline", "Status"}}
	for _, c := range campaigns {
		data = append(data, []string{
			strconv.FormatInt(c.ID, 10),
			c.Title,
			c.Owner.String(),
			c.Target.String(),
			c.AmountCollected.String(),
			c.Deadline.Format(time.DateOnly),
			string(c.Status()),
		})
	}
	return data
}

func donationTable(c model.Campaign) pterm.TableData {
	data := pterm.TableData{{"#", "Donator", "Amount"}}
	for i, d := range c.Donators {
		data = append(data, []string{strconv.Itoa(i), d.String(), c.Donations[i].String()})
	}
	return data
}

func campaignDetails(c model.Campaign) string {
	return fmt.Sprintf("Owner:       %s\nDescription: %s\nImage:       %s\nTarget:      %s ETH\nCollected:   %s ETH\nDeadline:    %s\nStatus:      %s",
		c.Owner, c.Description, c.Image, c.Target, c.AmountCollected, c.Deadline.Format(time.RFC3339), c.Status())
}
