package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/amirasaad/payadvance/infra/initializer"
	"github.com/amirasaad/payadvance/pkg/app"
	"github.com/amirasaad/payadvance/pkg/config"
	"github.com/amirasaad/payadvance/pkg/domain/advance"
	advancesvc "github.com/amirasaad/payadvance/pkg/service/advance"
	"github.com/amirasaad/payadvance/pkg/service/auth"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"golang.org/x/term"
)

const usage = `Usage: cli <command> [arguments]
Commands:
  eligibility <employee_id> <amount>
  submit <employee_id> <amount> <reason>
  approve <request_id>
  reject <request_id> <reason>
  process <disbursement_id>`

var (
	ok   = color.New(color.FgGreen, color.Bold).SprintFunc()
	bad  = color.New(color.FgRed, color.Bold).SprintFunc()
	info = color.New(color.FgCyan).SprintFunc()
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		return
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, bad("✖"), err)
		os.Exit(1)
	}
}

func run(cmd string, args []string) error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close() //nolint:errcheck

	a := app.New(deps.Deps, cfg)
	ctx := context.Background()

	operatorID, err := signIn(ctx, auth.NewWithBasic(deps.Uow, deps.Logger))
	if err != nil {
		return err
	}

	switch cmd {
	case "eligibility":
		if len(args) < 2 {
			return errors.New("usage: eligibility <employee_id> <amount>")
		}
		employeeID, amount, err := employeeAndAmount(args)
		if err != nil {
			return err
		}
		res, err := a.AdvanceService.CheckEligibility(ctx, employeeID, amount)
		if err != nil {
			return err
		}
		verdict := bad("not eligible")
		if res.Eligible {
			verdict = ok("eligible")
		}
		fmt.Printf("Employee %d is %s (max %s)\n", employeeID, verdict, info(res.MaxAmount.StringFixed(2)))
	case "submit":
		if len(args) < 3 {
			return errors.New("usage: submit <employee_id> <amount> <reason>")
		}
		employeeID, amount, err := employeeAndAmount(args)
		if err != nil {
			return err
		}
		req, err := a.AdvanceService.Submit(ctx, advancesvc.SubmitRequest{
			EmployeeID: employeeID,
			Amount:     amount,
			Reason:     strings.Join(args[2:], " "),
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s advance request %d submitted for %s\n", ok("✔"), req.ID, info(req.Amount.StringFixed(2)))
	case "approve", "reject":
		if len(args) < 1 {
			return fmt.Errorf("usage: %s <request_id>", cmd)
		}
		if cmd == "reject" && len(args) < 2 {
			return errors.New("usage: reject <request_id> <reason>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		change := advance.StatusChange{Status: advance.StatusApproved, ApprovedBy: &operatorID}
		if cmd == "reject" {
			change = advance.StatusChange{Status: advance.StatusRejected, RejectionReason: strings.Join(args[1:], " ")}
		}
		req, err := a.AdvanceService.UpdateStatus(ctx, id, change)
		if err != nil {
			return err
		}
		a.DispatchOutbox(ctx)
		fmt.Printf("%s advance request %d is now %s\n", ok("✔"), req.ID, info(req.Status))
	case "process":
		if len(args) < 1 {
			return errors.New("usage: process <disbursement_id>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		d, err := a.DisbursementService.Process(ctx, id)
		if err != nil {
			return err
		}
		a.DispatchOutbox(ctx)
		fmt.Printf("%s disbursement %d is %s (ref %s)\n", ok("✔"), d.ID, info(d.Status), d.TransactionReference)
	default:
		fmt.Println(usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// signIn prompts for operator credentials and returns the operator's user ID.
func signIn(ctx context.Context, svc *auth.Service) (uint, error) {
	fmt.Print("Email: ")
	var email string
	if _, err := fmt.Scanln(&email); err != nil {
		return 0, fmt.Errorf("read email: %w", err)
	}
	fmt.Print("Password: ")
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return 0, fmt.Errorf("read password: %w", err)
	}
	u, err := svc.Login(ctx, email, string(pw))
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

func employeeAndAmount(args []string) (uint, decimal.Decimal, error) {
	employeeID, err := parseID(args[0])
	if err != nil {
		return 0, decimal.Zero, err
	}
	amount, err := decimal.NewFromString(args[1])
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("invalid amount %q: %w", args[1], err)
	}
	return employeeID, amount, nil
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}
