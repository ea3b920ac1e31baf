package main

import "fmt"

func (a *app) tokenCommand(command string, args []string) error {
	switch command {
	case "mint":
		if len(args) != 2 {
			return fmt.Errorf("usage: mint <addr> <amount>")
		}
		to, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		amount, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		return a.ledger.Mint(to, amount)

	case "balance":
		if len(args) != 1 {
			return fmt.Errorf("usage: balance <addr>")
		}
		addr, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		balance, err := a.ledger.BalanceOf(addr)
		if err != nil {
			return err
		}
		fmt.Println(balance)
		return nil

	case "approve":
		if len(args) != 3 {
			return fmt.Errorf("usage: approve <owner> <spender> <amount>")
		}
		owner, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		spender, err := parseAddr(args[1])
		if err != nil {
			return err
		}
		amount, err := parseAmount(args[2])
		if err != nil {
			return err
		}
		return a.ledger.Approve(owner, spender, amount)
	}
	return fmt.Errorf("unknown token command %q", command)
}

func (a *app) opsCommand(command string, args []string) error {
	switch command {
	case "pause", "unpause":
		if len(args) != 1 {
			return fmt.Errorf("usage: %s <registry|rewards>", command)
		}
		switch args[0] {
		case "registry":
			if command == "pause" {
				return a.registry.Pause(a.admin)
			}
			return a.registry.Unpause(a.admin)
		case "rewards":
			if command == "pause" {
				return a.rewards.Pause(a.admin)
			}
			return a.rewards.Unpause(a.admin)
		}
		return fmt.Errorf("unknown module %q", args[0])

	case "sweep":
		if len(args) != 2 {
			return fmt.Errorf("usage: sweep <registry|rewards> <to>")
		}
		to, err := parseAddr(args[1])
		if err != nil {
			return err
		}
		switch args[0] {
		case "registry":
			amount, err := a.registry.EmergencyWithdraw(a.admin, to)
			if err != nil {
				return err
			}
			fmt.Println(amount)
			return nil
		case "rewards":
			amount, err := a.rewards.EmergencyWithdraw(a.admin, to)
			if err != nil {
				return err
			}
			fmt.Println(amount)
			return nil
		}
		return fmt.Errorf("unknown module %q", args[0])
	}
	return fmt.Errorf("unknown ops command %q", command)
}
