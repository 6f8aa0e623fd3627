package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/class-divider/internal/export"
	"github.com/kingrea/class-divider/internal/partition"
	"github.com/kingrea/class-divider/internal/roles"
	"github.com/kingrea/class-divider/internal/roster"
	"github.com/kingrea/class-divider/internal/settings"
)

const (
	formatText = "text"
	formatCSV  = "csv"
)

type splitOptions struct {
	file    string
	groups  int
	size    int
	roles   []string
	noRoles bool
	format  string
	output  string
	seed    uint64
}

func newSplitCmd(root *rootOptions) *cobra.Command {
	o := &splitOptions{}
	cmd := &cobra.Command{
		Use:   "split [names...]",
		Short: "Divide a roster without the interactive UI",
		Long: `Divide a roster into groups and print the result.

Names come from the arguments, from --file, or from stdin when neither is
given. Without --groups or --size the last division saved in
.divider/config.yaml is used.`,
		Example: `  divider split Ann Bob Cara Dan --groups 2
  divider split --file class.txt --size 3 --format csv --output groups.csv
  cat class.txt | divider split --no-roles`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, root, o, args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.file, "file", "f", "", "read names from a .txt or .csv file")
	f.IntVarP(&o.groups, "groups", "g", 0, "number of groups")
	f.IntVarP(&o.size, "size", "s", 0, "people per group")
	f.StringSliceVar(&o.roles, "roles", nil, "roles to rotate, comma separated (default: saved roles)")
	f.BoolVar(&o.noRoles, "no-roles", false, "do not assign roles")
	f.StringVar(&o.format, "format", formatText, "output format: text or csv")
	f.StringVarP(&o.output, "output", "o", "", "write to this file instead of stdout")
	f.Uint64Var(&o.seed, "seed", 0, "seed the shuffle for a reproducible division")
	cmd.MarkFlagsMutuallyExclusive("groups", "size")
	cmd.MarkFlagsMutuallyExclusive("roles", "no-roles")
	return cmd
}

func runSplit(cmd *cobra.Command, root *rootOptions, o *splitOptions, args []string) error {
	format := strings.ToLower(strings.TrimSpace(o.format))
	if format != formatText && format != formatCSV {
		return fmt.Errorf("unknown format %q (want text or csv)", o.format)
	}

	s, err := root.open(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	names, err := o.readNames(cmd.InOrStdin(), args, s.cfg.Project.Input.FallbackEncoding)
	if err != nil {
		return err
	}
	if err := roster.Validate(names); err != nil {
		return err
	}

	division := s.cfg.Settings()
	if cmd.Flags().Changed("groups") {
		division = settings.Settings{Mode: partition.ByGroupCount, Value: o.groups}
	}
	if cmd.Flags().Changed("size") {
		division = settings.Settings{Mode: partition.ByMemberCount, Value: o.size}
	}
	if err := division.Validate(len(names)); err != nil {
		return err
	}

	roleList, err := o.resolveRoles(s.cfg.RolesPath())
	if err != nil {
		return err
	}

	partitionOpts := []partition.Option{partition.WithNameFormat(s.cfg.Project.Groups.NameFormat)}
	if cmd.Flags().Changed("seed") {
		partitionOpts = append(partitionOpts, partition.WithRand(rand.New(rand.NewPCG(o.seed, o.seed))))
	}
	groups := partition.New(partitionOpts...).Partition(names, division.Mode, division.Value, roleList)
	s.metrics.ObservePartition(division.Mode, groups)
	s.logger.Info("partition",
		zap.String("action", "split"),
		zap.Stringer("mode", division.Mode),
		zap.Int("value", division.Value),
		zap.Int("names", len(names)),
		zap.Int("groups", len(groups)),
		zap.Int("roles", len(roleList)),
	)

	dest, err := o.write(cmd.OutOrStdout(), format, groups)
	if err != nil {
		s.logger.Error("export", zap.String("format", format), zap.Error(err))
		return err
	}
	s.metrics.ObserveExport(format)
	if dest != "" {
		s.logger.Info("export", zap.String("format", format), zap.String("path", dest))
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d %s to %s\n", len(groups), plural(len(groups), "group", "groups"), dest)
	}
	return nil
}

// readNames gathers names from the arguments and --file, falling back to
// stdin when neither was given.
func (o *splitOptions) readNames(stdin io.Reader, args []string, fallback string) ([]string, error) {
	var names []string
	if len(args) > 0 {
		names = append(names, roster.Parse(strings.Join(args, "\n"))...)
	}
	if o.file != "" {
		text, err := roster.ReadFile(o.file, fallback)
		if err != nil {
			return nil, err
		}
		names = append(names, roster.Parse(text)...)
	}
	if len(args) == 0 && o.file == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		text, err := roster.Decode(data, fallback)
		if err != nil {
			return nil, err
		}
		names = roster.Parse(text)
	}
	return names, nil
}

func (o *splitOptions) resolveRoles(storePath string) ([]partition.Role, error) {
	if o.noRoles {
		return nil, nil
	}
	if len(o.roles) > 0 {
		out := make([]partition.Role, 0, len(o.roles))
		seen := make(map[string]bool, len(o.roles))
		for _, name := range o.roles {
			name = strings.TrimSpace(name)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, partition.Role{ID: uuid.NewString(), Name: name})
		}
		return out, nil
	}
	store, err := roles.Open(storePath)
	if err != nil {
		return nil, err
	}
	return store.List(), nil
}

// write renders groups to --output or stdout and returns the file written,
// if any.
func (o *splitOptions) write(stdout io.Writer, format string, groups []partition.Group) (string, error) {
	if o.output == "" {
		if format == formatCSV {
			return "", export.WriteCSV(stdout, groups)
		}
		return "", export.WriteText(stdout, groups)
	}
	if format == formatCSV {
		return export.SaveCSV(filepath.Dir(o.output), filepath.Base(o.output), groups)
	}
	f, err := os.Create(o.output)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", o.output, err)
	}
	if err := export.WriteText(f, groups); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", o.output, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", o.output, err)
	}
	return o.output, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
