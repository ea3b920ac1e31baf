package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/resolverai/roast-somnia-contracts/config"
	"github.com/resolverai/roast-somnia-contracts/core/events"
	"github.com/resolverai/roast-somnia-contracts/core/types"
	"github.com/resolverai/roast-somnia-contracts/crypto"
	"github.com/resolverai/roast-somnia-contracts/native/registry"
	"github.com/resolverai/roast-somnia-contracts/native/rewards"
	"github.com/resolverai/roast-somnia-contracts/native/token"
	"github.com/resolverai/roast-somnia-contracts/observability/logging"
	"github.com/resolverai/roast-somnia-contracts/storage"
)

func main() {
	configPath := flag.String("config", "roast.toml", "path to the settlement config file")
	envName := flag.String("env", "", "environment label for log lines")
	flag.Parse()

	logger := logging.Setup("roastctl", *envName)

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return
	}

	if args[0] == "gen-key" {
		generateKey()
		return
	}

	app, err := openApp(*configPath, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer app.close()

	if err := app.dispatch(args[0], args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: roastctl [-config roast.toml] <command> [args]

Keys and balances:
  gen-key                                   generate a key pair and address
  mint <addr> <amount>                      seed balance on the local ledger
  balance <addr>                           print an account balance
  approve <owner> <spender> <amount>        set a spending allowance

Content lifecycle:
  register <creator> <id> <hash> <type>     register new content
  approve-content <id> <price>              price and list content (admin)
  set-price <id> <price>                    re-price unsold content (admin)
  purchase <buyer> <id>                     settle a purchase
  purchase-permit <buyer-key> <id> <deadline>  purchase via signed permit
  personalize <owner> <id> <hash>           finalize owned content
  content <id>                              inspect a content record
  contents-of <addr>                        list ids owned by an address

Referrals and payouts:
  referral <user> <direct> <grand|-> <tier> register a referral chain (admin)
  set-tier <user> <tier>                    move a user to a new tier (admin)
  deactivate <user>                         soft-delete a referral (admin)
  set-rates <tier> <directBps> <grandBps>   adjust tier rates (admin)
  payout <index>                            inspect a payout record
  payouts                                   print the payout ledger length

Operations:
  pause <registry|rewards>                  disable the module (admin)
  unpause <registry|rewards>                re-enable the module (admin)
  sweep <registry|rewards> <to>             recover custody funds (admin)`)
}

// app bundles the wired settlement components behind the CLI commands.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	state    *storage.State
	ledger   *token.Token
	registry *registry.Engine
	rewards  *rewards.Engine
	admin    [20]byte
}

func openApp(configPath string, logger *slog.Logger) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var db storage.Database
	switch strings.ToLower(cfg.Backend) {
	case "memory":
		db = storage.NewMemDB()
	case "leveldb":
		db, err = storage.NewLevelDB(filepath.Join(cfg.DataDir, "state"))
	default:
		if mkErr := os.MkdirAll(cfg.DataDir, 0o755); mkErr != nil {
			return nil, mkErr
		}
		db, err = storage.NewBoltDB(filepath.Join(cfg.DataDir, "state.db"))
	}
	if err != nil {
		return nil, err
	}
	state := storage.NewState(db)

	ledger := token.NewToken()
	ledger.SetState(state)

	admin, _ := cfg.AdminAddress()
	evaluator, _ := cfg.EvaluatorAddress()
	platform, _ := cfg.PlatformAddress()
	registryCustody, _ := cfg.RegistryCustody()
	rewardsCustody, _ := cfg.RewardsCustody()

	emitter := slogEmitter{log: logger}

	rewardsEngine := rewards.NewEngine()
	rewardsEngine.SetState(state)
	rewardsEngine.SetLedger(ledger)
	rewardsEngine.SetEmitter(emitter)
	rewardsEngine.SetAdmin(admin)
	rewardsEngine.SetCustody(rewardsCustody)
	if !isZero(evaluator) && !isZero(platform) {
		if err := rewardsEngine.SetTreasuries(admin, evaluator, platform); err != nil {
			return nil, err
		}
	}
	for tierName, override := range cfg.TierRates {
		tier, err := rewards.ParseTier(tierName)
		if err != nil {
			return nil, err
		}
		if err := rewardsEngine.SetTierRates(admin, tier, override.DirectBps, override.GrandBps); err != nil {
			return nil, err
		}
	}

	registryEngine := registry.NewEngine()
	registryEngine.SetState(state)
	registryEngine.SetEmitter(emitter)
	registryEngine.SetAdmin(admin)
	registryEngine.SetCustody(registryCustody)
	if err := registryEngine.SetLedger(admin, ledger); err != nil {
		return nil, err
	}
	if err := registryEngine.SetDistributor(admin, rewardsEngine, rewardsCustody); err != nil {
		return nil, err
	}
	if cfg.PauseAtBoot {
		if err := registryEngine.Pause(admin); err != nil {
			return nil, err
		}
		if err := rewardsEngine.Pause(admin); err != nil {
			return nil, err
		}
	}

	return &app{
		cfg:      cfg,
		log:      logger,
		state:    state,
		ledger:   ledger,
		registry: registryEngine,
		rewards:  rewardsEngine,
		admin:    admin,
	}, nil
}

func (a *app) close() {
	if err := a.state.Close(); err != nil {
		a.log.Error("failed to close state", "error", err)
	}
}

func (a *app) dispatch(command string, args []string) error {
	switch command {
	case "mint", "balance", "approve":
		return a.tokenCommand(command, args)
	case "register", "approve-content", "set-price", "purchase", "purchase-permit",
		"personalize", "content", "contents-of":
		return a.contentCommand(command, args)
	case "referral", "set-tier", "deactivate", "set-rates", "payout", "payouts":
		return a.rewardsCommand(command, args)
	case "pause", "unpause", "sweep":
		return a.opsCommand(command, args)
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// slogEmitter forwards engine events to the structured logger.
type slogEmitter struct {
	log *slog.Logger
}

func (s slogEmitter) Emit(evt events.Event) {
	if s.log == nil || evt == nil {
		return
	}
	attrs := []any{}
	if payloader, ok := evt.(interface{ Event() *types.Event }); ok {
		if payload := payloader.Event(); payload != nil {
			for key, value := range payload.Attributes {
				attrs = append(attrs, slog.String(key, value))
			}
		}
	}
	s.log.Info(evt.EventType(), attrs...)
}

func generateKey() {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	addr := crypto.MustNewAddress(crypto.RoastPrefix, keyAddress(key))
	fmt.Printf("address:     %s\n", addr)
	fmt.Printf("private key: %x\n", key.Bytes())
}

func keyAddress(key *crypto.PrivateKey) []byte {
	raw := key.PubKey().Address()
	return raw[:]
}

func parseAddr(value string) ([20]byte, error) {
	addr, err := crypto.DecodeAddress(value)
	if err != nil {
		return [20]byte{}, err
	}
	if addr.Prefix() != crypto.RoastPrefix {
		return [20]byte{}, fmt.Errorf("unexpected address prefix %q", addr.Prefix())
	}
	return addr.Bytes20(), nil
}

func parseAmount(value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	return amount, nil
}

func isZero(addr [20]byte) bool {
	var zero [20]byte
	return addr == zero
}

func printJSON(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}
