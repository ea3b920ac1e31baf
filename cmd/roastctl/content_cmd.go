package main

import (
	"fmt"
	"strconv"

	"github.com/resolverai/roast-somnia-contracts/crypto"
	"github.com/resolverai/roast-somnia-contracts/native/token"
)

func (a *app) contentCommand(command string, args []string) error {
	switch command {
	case "register":
		if len(args) != 4 {
			return fmt.Errorf("usage: register <creator> <id> <hash> <type>")
		}
		creator, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		content, err := a.registry.RegisterContent(creator, args[1], args[2], args[3])
		if err != nil {
			return err
		}
		return printJSON(content)

	case "approve-content":
		if len(args) != 2 {
			return fmt.Errorf("usage: approve-content <id> <price>")
		}
		price, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		content, err := a.registry.ApproveContent(a.admin, args[0], price)
		if err != nil {
			return err
		}
		return printJSON(content)

	case "set-price":
		if len(args) != 2 {
			return fmt.Errorf("usage: set-price <id> <price>")
		}
		price, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		content, err := a.registry.UpdatePrice(a.admin, args[0], price)
		if err != nil {
			return err
		}
		return printJSON(content)

	case "purchase":
		if len(args) != 2 {
			return fmt.Errorf("usage: purchase <buyer> <id>")
		}
		buyer, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		content, err := a.registry.PurchaseContent(buyer, args[1])
		if err != nil {
			return err
		}
		return printJSON(content)

	case "purchase-permit":
		if len(args) != 3 {
			return fmt.Errorf("usage: purchase-permit <buyer-key> <id> <deadline>")
		}
		key, err := crypto.PrivateKeyFromHex(args[0])
		if err != nil {
			return err
		}
		deadline, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid deadline %q", args[2])
		}
		buyer := key.PubKey().Address()
		content, err := a.registry.Content(args[1])
		if err != nil {
			return err
		}
		nonce, err := a.ledger.Nonce(buyer)
		if err != nil {
			return err
		}
		sig, err := token.SignPermit(key, a.registry.Custody(), content.Price, nonce, deadline)
		if err != nil {
			return err
		}
		purchased, err := a.registry.PurchaseContentWithPermit(buyer, args[1], deadline, sig)
		if err != nil {
			return err
		}
		return printJSON(purchased)

	case "personalize":
		if len(args) != 3 {
			return fmt.Errorf("usage: personalize <owner> <id> <hash>")
		}
		owner, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		content, err := a.registry.MarkContentPersonalized(owner, args[1], args[2])
		if err != nil {
			return err
		}
		return printJSON(content)

	case "content":
		if len(args) != 1 {
			return fmt.Errorf("usage: content <id>")
		}
		content, err := a.registry.Content(args[0])
		if err != nil {
			return err
		}
		return printJSON(content)

	case "contents-of":
		if len(args) != 1 {
			return fmt.Errorf("usage: contents-of <addr>")
		}
		owner, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		ids, err := a.registry.ContentsOf(owner)
		if err != nil {
			return err
		}
		return printJSON(ids)
	}
	return fmt.Errorf("unknown content command %q", command)
}
