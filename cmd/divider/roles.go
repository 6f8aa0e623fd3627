package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/class-divider/internal/roles"
)

func newRolesCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Manage the roles handed out inside each group",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved roles",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRoles(cmd, root, func(s *session, store *roles.Store) error {
					list := store.List()
					if len(list) == 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "No roles. Members will not get a role.")
						return nil
					}
					for _, r := range list {
						fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.ID, r.Name)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "add NAME",
			Short: "Add a role",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRoles(cmd, root, func(s *session, store *roles.Store) error {
					role, err := store.Add(strings.Join(args, " "))
					if err != nil {
						return err
					}
					s.logger.Info("role added", zap.String("id", role.ID), zap.String("name", role.Name))
					fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", role.Name, role.ID)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "remove ID|NAME",
			Short: "Remove a role by id or exact name",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRoles(cmd, root, func(s *session, store *roles.Store) error {
					role, ok := store.Find(args[0])
					if !ok {
						return fmt.Errorf("%w: %s", roles.ErrNotFound, args[0])
					}
					if _, err := store.Remove(role.ID); err != nil {
						return err
					}
					s.logger.Info("role removed", zap.String("id", role.ID), zap.String("name", role.Name))
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", role.Name)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Restore the default roles",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRoles(cmd, root, func(s *session, store *roles.Store) error {
					if err := store.Reset(); err != nil {
						return err
					}
					n := len(store.List())
					s.logger.Info("roles reset", zap.Int("roles", n))
					fmt.Fprintf(cmd.OutOrStdout(), "Restored %d default %s\n", n, plural(n, "role", "roles"))
					return nil
				})
			},
		},
	)
	return cmd
}

func withRoles(cmd *cobra.Command, root *rootOptions, fn func(*session, *roles.Store) error) error {
	s, err := root.open(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()
	store, err := roles.Open(s.cfg.RolesPath())
	if err != nil {
		return err
	}
	return fn(s, store)
}
