package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ratecast/internal/domain"
	"ratecast/internal/tiers"
)

func policyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect and edit the working rate policy",
	}
	cmd.AddCommand(
		policyShowCmd(),
		policyRestoreCmd(),
		policySetRateCmd(),
		policyAddTierCmd(),
		policyRemoveTierCmd(),
		policySetTierCmd(),
	)
	return cmd
}

func policyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the working policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			if err := s.ensurePolicy(cmd.Context()); err != nil {
				return err
			}

			policy := s.store.Policy()
			for _, name := range policy.ClassNames() {
				cp := policy[name]
				switch cp.Kind() {
				case domain.KindFlat:
					fmt.Printf("%s (class %d)\n  flat rate %.2f per $1,000\n", name, cp.Code, cp.FlatRate())
				case domain.KindTiered:
					fmt.Printf("%s (class %d)\n", name, cp.Code)
					ts := tiers.Sorted(cp.Tiers)
					labels := tiers.Labels(ts)
					for i, tier := range ts {
						fmt.Printf("  [%d] %-18s rate %.2f\n", i, labels[i], tier.Rate)
					}
				}
			}
			return nil
		},
	}
}

func policyRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Replace the working policy with the server default",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			// Fetching the default also captures the pristine copy that
			// RestoreDefaultPolicy reverts to.
			if err := s.store.FetchDefaultPolicy(cmd.Context()); err != nil {
				return err
			}
			s.store.RestoreDefaultPolicy()
			fmt.Println("policy restored to server default")
			return nil
		},
	}
}

// classPolicy looks up one class on the working policy, loading it first.
func (s *session) classPolicy(cmd *cobra.Command, className string) (domain.ClassPolicy, error) {
	if err := s.ensurePolicy(cmd.Context()); err != nil {
		return domain.ClassPolicy{}, err
	}
	cp, ok := s.store.Policy()[className]
	if !ok {
		return domain.ClassPolicy{}, fmt.Errorf("unknown tax class %q", className)
	}
	return cp, nil
}

func policySetRateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-rate <class> <rate>",
		Short: "Set a flat rate on a class, replacing any tiers",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			cp, err := s.classPolicy(cmd, args[0])
			if err != nil {
				return err
			}

			rate, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid rate %q: %w", args[1], err)
			}
			s.store.UpdatePolicy(args[0], domain.ClassPolicy{
				Code: cp.Code,
				Rate: domain.RatePtr(rate),
			})
			fmt.Printf("%s: flat rate %.2f\n", args[0], rate)
			return nil
		},
	}
}

func policyAddTierCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-tier <class>",
		Short: "Append a tier to a class (converts a flat class to tiers)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			cp, err := s.classPolicy(cmd, args[0])
			if err != nil {
				return err
			}

			next := tiers.AddTier(cp, s.cfg.BoundStep)
			s.store.UpdatePolicy(args[0], next)
			fmt.Printf("%s: %d tiers\n", args[0], len(next.Tiers))
			return nil
		},
	}
}

func policyRemoveTierCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-tier <class> <index>",
		Short: "Remove one tier by index (sorted order)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			cp, err := s.classPolicy(cmd, args[0])
			if err != nil {
				return err
			}
			if cp.Kind() != domain.KindTiered {
				return fmt.Errorf("%s has a flat rate, nothing to remove", args[0])
			}

			index, err := strconv.Atoi(args[1])
			if err != nil || index < 0 || index >= len(cp.Tiers) {
				return fmt.Errorf("invalid tier index %q", args[1])
			}

			next, collapsed := tiers.RemoveTier(cp, index)
			s.store.UpdatePolicy(args[0], next)
			if collapsed {
				fmt.Printf("%s: converted to flat rate %.2f\n", args[0], next.FlatRate())
			} else {
				fmt.Printf("%s: %d tiers\n", args[0], len(next.Tiers))
			}
			return nil
		},
	}
}

func policySetTierCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-tier <class> <index> <rate|up_to> <value>",
		Short: "Edit one field of one tier",
		Long: "Edits a tier field in sorted order. Setting up_to re-sorts the tiers,\n" +
			"so the edited tier may end up at a different index.",
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			cp, err := s.classPolicy(cmd, args[0])
			if err != nil {
				return err
			}
			if cp.Kind() != domain.KindTiered {
				return fmt.Errorf("%s has a flat rate, use set-rate instead", args[0])
			}

			index, err := strconv.Atoi(args[1])
			if err != nil || index < 0 || index >= len(cp.Tiers) {
				return fmt.Errorf("invalid tier index %q", args[1])
			}

			var field tiers.Field
			switch args[2] {
			case "rate":
				field = tiers.FieldRate
			case "up_to":
				field = tiers.FieldUpTo
				if tiers.Sorted(cp.Tiers)[index].Unbounded() {
					return fmt.Errorf("tier %d has no upper bound", index)
				}
			default:
				return fmt.Errorf("unknown field %q (want rate or up_to)", args[2])
			}

			next := tiers.ChangeField(cp.Tiers, index, field, args[3])
			s.store.UpdatePolicy(args[0], domain.ClassPolicy{
				Code:  cp.Code,
				Tiers: next,
			})

			ts := tiers.Sorted(next)
			labels := tiers.Labels(ts)
			for i, tier := range ts {
				fmt.Printf("  [%d] %-18s rate %.2f\n", i, labels[i], tier.Rate)
			}
			return nil
		},
	}
}
