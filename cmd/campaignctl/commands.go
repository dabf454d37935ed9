package main

import (
	"fmt"
	"strconv"

	"github.com/blues/campaignd/internal/model"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all campaigns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			campaigns := app.Logic.State().Campaigns
			if len(campaigns) == 0 {
				pterm.Info.Println("No campaigns found")
				return nil
			}
			return pterm.DefaultTable.WithHasHeader().WithData(campaignTable(campaigns)).Render()
		},
	}
}

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a campaign and its donations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			app, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			c, ok := app.Logic.Campaign(id)
			if !ok {
				return fmt.Errorf("Campaign not found")
			}
			pterm.DefaultSection.Println(c.Title)
			pterm.Println(campaignDetails(c))
			if len(c.Donators) == 0 {
				return nil
			}
			return pterm.DefaultTable.WithHasHeader().WithData(donationTable(c)).Render()
		},
	}
}

func newCreateCmd(opts *options) *cobra.Command {
	var form model.CampaignForm

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a campaign owned by the connected account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			spinner, _ := pterm.DefaultSpinner.Start("Creating campaign...")
			if err := app.Logic.CreateCampaign(cmd.Context(), form); err != nil {
				spinner.Fail(err.Error())
				return err
			}
			spinner.Success(fmt.Sprintf("Campaign %q created", form.Title))
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Title, "title", "", "campaign title")
	cmd.Flags().StringVar(&form.Description, "description", "", "campaign description")
	cmd.Flags().StringVar(&form.Target, "target", "", "funding goal in ether")
	cmd.Flags().StringVar(&form.Deadline, "deadline", "", "deadline (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&form.Image, "image", "", "image URL")
	return cmd
}

func newDonateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "donate <id> <amount>",
		Short: "Donate ether to a campaign",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runMutation(cmd, opts, "Donating...", fmt.Sprintf("Donated %s to campaign %d", args[1], id),
				func(app appLogic) error { return app.Donate(cmd.Context(), id, args[1]) })
		},
	}
}

func newWithdrawCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <id>",
		Short: "Withdraw the funds of a campaign that reached its goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runMutation(cmd, opts, "Withdrawing funds...", fmt.Sprintf("Funds withdrawn from campaign %d", id),
				func(app appLogic) error { return app.WithdrawFunds(cmd.Context(), id) })
		},
	}
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a campaign without donations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runMutation(cmd, opts, "Deleting campaign...", fmt.Sprintf("Campaign %d deleted", id),
				func(app appLogic) error { return app.DeleteCampaign(cmd.Context(), id) })
		},
	}
}

func newStateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the connected account and sync state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			st := app.Logic.State()
			account := app.Logic.Address().String()
			if account == "" {
				account = "(not connected)"
			}
			return pterm.DefaultTable.WithData(pterm.TableData{
				{"Account", account},
				{"Chain", app.Config.Chain.ChainType},
				{"Campaigns", strconv.Itoa(len(st.Campaigns))},
				{"Loading", strconv.FormatBool(st.Loading)},
				{"Error", st.Error},
			}).Render()
		},
	}
}
