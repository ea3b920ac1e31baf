package main

import (
	"fmt"
	"strconv"

	"github.com/resolverai/roast-somnia-contracts/native/rewards"
)

func (a *app) rewardsCommand(command string, args []string) error {
	switch command {
	case "referral":
		if len(args) != 4 {
			return fmt.Errorf("usage: referral <user> <direct> <grand|-> <tier>")
		}
		user, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		direct, err := parseAddr(args[1])
		if err != nil {
			return err
		}
		var grand [20]byte
		if args[2] != "-" {
			if grand, err = parseAddr(args[2]); err != nil {
				return err
			}
		}
		tier, err := rewards.ParseTier(args[3])
		if err != nil {
			return err
		}
		record, err := a.rewards.RegisterReferral(a.admin, user, direct, grand, tier)
		if err != nil {
			return err
		}
		return printJSON(record)

	case "set-tier":
		if len(args) != 2 {
			return fmt.Errorf("usage: set-tier <user> <tier>")
		}
		user, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		tier, err := rewards.ParseTier(args[1])
		if err != nil {
			return err
		}
		record, err := a.rewards.UpdateUserTier(a.admin, user, tier)
		if err != nil {
			return err
		}
		return printJSON(record)

	case "deactivate":
		if len(args) != 1 {
			return fmt.Errorf("usage: deactivate <user>")
		}
		user, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		return a.rewards.DeactivateReferral(a.admin, user)

	case "set-rates":
		if len(args) != 3 {
			return fmt.Errorf("usage: set-rates <tier> <directBps> <grandBps>")
		}
		tier, err := rewards.ParseTier(args[0])
		if err != nil {
			return err
		}
		directBps, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid direct bps %q", args[1])
		}
		grandBps, err := strconv.ParseUint(args[2], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid grand bps %q", args[2])
		}
		return a.rewards.SetTierRates(a.admin, tier, uint32(directBps), uint32(grandBps))

	case "payout":
		if len(args) != 1 {
			return fmt.Errorf("usage: payout <index>")
		}
		index, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid payout index %q", args[0])
		}
		record, err := a.rewards.Payout(index)
		if err != nil {
			return err
		}
		return printJSON(record)

	case "payouts":
		count, err := a.rewards.TotalPayouts()
		if err != nil {
			return err
		}
		fmt.Println(count)
		return nil
	}
	return fmt.Errorf("unknown rewards command %q", command)
}
