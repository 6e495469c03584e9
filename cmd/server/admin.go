package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/catalog"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/database"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/migrations"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/repository"
)

var errNoDatabase = errors.New("DATABASE_URL is not set")

func openArchive(opts *rootOptions) (*gorm.DB, error) {
	if opts.cfg.DatabaseURL == "" {
		return nil, errNoDatabase
	}
	return database.Initialize(opts.cfg.DatabaseURL)
}

func newMenuCommand(opts *rootOptions) *cobra.Command {
	var archived bool
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Print the menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var items []models.MenuItem
			if archived {
				db, err := openArchive(opts)
				if err != nil {
					return err
				}
				if items, err = repository.NewMenuRepository(db).GetAll(); err != nil {
					return err
				}
			} else {
				menu, err := catalog.Default()
				if err != nil {
					return err
				}
				items = menu.List()
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tVEG\tAVAILABLE")
			for _, it := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t₹%d\t%t\t%t\n", it.ID, it.Name, it.Category, it.Price, it.IsVegetarian, it.IsAvailable)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&archived, "archived", false, "read the menu from the database instead of the built-in catalog")
	return cmd
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the archive tables and load the menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openArchive(opts)
			if err != nil {
				return err
			}
			menu, err := catalog.Default()
			if err != nil {
				return err
			}
			if err := migrations.Run(db, menu.List(), reset); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "drop the archive tables first")
	return cmd
}

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history [order-id]",
		Short: "List archived orders, or the status changes of one order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openArchive(opts)
			if err != nil {
				return err
			}
			repo := repository.NewOrderRepository(db)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			if len(args) == 0 {
				records, err := repo.GetAll()
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "ORDER\tPLACED\tCUSTOMER\tTYPE\tSTATUS\tTOTAL")
				for _, r := range records {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t₹%d\n",
						r.OrderID, r.PlacedAt.Format("2006-01-02 15:04"), r.CustomerName, r.OrderType, r.Status, r.TotalAmount)
				}
				return w.Flush()
			}

			rec, err := repo.GetByOrderID(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  %s  ₹%d  (%d items)\n\n",
				rec.OrderID, rec.CustomerName, rec.OrderType, rec.Status, rec.TotalAmount, len(rec.Items))
			changes, err := repo.GetHistory(rec.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "AT\tFROM\tTO\tBY")
			for _, c := range changes {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ChangedAt.Format("15:04:05"), c.FromStatus, c.ToStatus, c.ChangedBy)
			}
			return w.Flush()
		},
	}
}
