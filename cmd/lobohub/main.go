package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"lobohub/internal/config"
	"lobohub/internal/database"
	"lobohub/internal/models"
	"lobohub/internal/repository"
	"lobohub/internal/service"
	"lobohub/internal/session"
	"lobohub/internal/store"
	"lobohub/internal/validation"
)

// app bundles the wired-up services behind the CLI commands
type app struct {
	auth       *service.AuthService
	membership *service.MembershipService
	aggregate  *service.AggregateService
	snapshots  *service.SnapshotService
	email      *service.EmailService
	records    *store.RecordStore
	log        *zap.Logger
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	logger := buildLogger(cfg.LogLevel)
	defer logger.Sync()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	users := repository.NewUserRepository(db)
	families := repository.NewFamilyRepository(db)
	invites := repository.NewInviteRepository(db)
	records := store.New(db)

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		logger.Fatal("LOBOHUB_JWT_SECRET must be set")
	}
	tokens := session.NewTokenManager(jwtSecret, cfg.SessionDuration, users)

	aggregate := service.NewAggregateService(users, records, logger)
	email, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, logger)
	if err != nil {
		logger.Fatal("failed to initialize email service", zap.Error(err))
	}

	a := &app{
		auth:       service.NewAuthService(users, tokens, logger),
		membership: service.NewMembershipService(db, users, families, invites, logger),
		aggregate:  aggregate,
		snapshots:  service.NewSnapshotService(db, aggregate, logger),
		email:      email,
		records:    records,
		log:        logger,
	}

	switch os.Args[1] {
	case "register":
		a.cmdRegister(os.Args[2:])
	case "login":
		a.cmdLogin(os.Args[2:])
	case "family":
		a.cmdFamily(os.Args[2:])
	case "add":
		a.cmdAdd(os.Args[2:])
	case "update":
		a.cmdUpdate(os.Args[2:])
	case "delete":
		a.cmdDelete(os.Args[2:])
	case "list":
		a.cmdList(os.Args[2:])
	case "export":
		a.cmdExport(os.Args[2:])
	case "import":
		a.cmdImport(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func buildLogger(level string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func (a *app) cmdRegister(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "Email address (required)")
	name := fs.String("name", "", "Display name (required)")
	password := fs.String("password", "", "Password (required)")
	fs.Parse(args)

	user, err := a.auth.Register(*email, *password, *name)
	if err != nil {
		fail("register failed: %v", err)
	}
	fmt.Printf("Registered %s (%s)\n", user.Name, user.ID)
}

func (a *app) cmdLogin(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Email address (required)")
	password := fs.String("password", "", "Password (required)")
	fs.Parse(args)

	sess, user, err := a.auth.Login(*email, *password)
	if err != nil {
		fail("login failed: %v", err)
	}
	fmt.Printf("Logged in as %s\n", user.Name)
	fmt.Printf("Session token (expires %s):\n%s\n", sess.ExpiresAt.Format(time.RFC3339), sess.Token)
}

func (a *app) cmdFamily(args []string) {
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("family create", flag.ExitOnError)
		token := fs.String("token", "", "Session token (required)")
		name := fs.String("name", "", "Family name (required)")
		fs.Parse(args[1:])

		user := a.mustResolve(*token)
		family, err := a.membership.CreateFamily(user, *name)
		if err != nil {
			fail("create family failed: %v", err)
		}
		fmt.Printf("Created family %q\nInvite code: %s\n", family.Name, family.InviteCode)

	case "join":
		fs := flag.NewFlagSet("family join", flag.ExitOnError)
		token := fs.String("token", "", "Session token (required)")
		code := fs.String("code", "", "Invite code (required)")
		fs.Parse(args[1:])

		user := a.mustResolve(*token)
		family, err := a.membership.RedeemInvite(user, *code)
		if err != nil {
			fail("join failed: %v", err)
		}
		fmt.Printf("Joined family %q\n", family.Name)

	case "invite":
		fs := flag.NewFlagSet("family invite", flag.ExitOnError)
		token := fs.String("token", "", "Session token (required)")
		to := fs.String("email", "", "Send the code to this address via email")
		toName := fs.String("name", "there", "Recipient name for the email")
		fs.Parse(args[1:])

		user := a.mustResolve(*token)
		if !user.HasFamily() {
			fail("you don't belong to a family yet")
		}
		code, err := a.membership.IssueInvite(user.FamilyID)
		if err != nil {
			fail("issue invite failed: %v", err)
		}
		fmt.Printf("Invite code: %s\n", code)

		if *to != "" {
			family, err := a.membership.GetFamily(user.FamilyID)
			if err != nil {
				fail("load family failed: %v", err)
			}
			if err := a.email.SendInviteEmail(context.Background(), *to, *toName, family); err != nil {
				fail("send invite email failed: %v", err)
			}
			fmt.Printf("Invite sent to %s\n", *to)
		}

	case "rotate":
		fs := flag.NewFlagSet("family rotate", flag.ExitOnError)
		token := fs.String("token", "", "Session token (required)")
		fs.Parse(args[1:])

		user := a.mustResolve(*token)
		if !user.HasFamily() {
			fail("you don't belong to a family yet")
		}
		code, err := a.membership.RotateInviteCode(user.FamilyID, user.ID)
		if err != nil {
			fail("rotate failed: %v", err)
		}
		fmt.Printf("New invite code: %s\n", code)

	default:
		printUsage()
		os.Exit(1)
	}
}

func (a *app) cmdAdd(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	token := fs.String("token", "", "Session token (required)")
	collection := fs.String("collection", "", "Collection tag, e.g. tasks (required)")
	payload := fs.String("payload", "", "Record payload as a JSON object (required)")
	fs.Parse(args)

	if err := validation.ValidateCollection(*collection); err != nil {
		fail("add failed: %v", err)
	}

	user := a.mustResolve(*token)
	record, err := a.records.Create(user.ID, *collection, []byte(*payload))
	if err != nil {
		fail("add failed: %v", err)
	}
	fmt.Printf("Created %s record %s\n", record.Collection, record.ID)
}

func (a *app) cmdUpdate(args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	token := fs.String("token", "", "Session token (required)")
	collection := fs.String("collection", "", "Collection tag (required)")
	id := fs.String("id", "", "Record id (required)")
	payload := fs.String("payload", "", "Partial payload as a JSON object (required)")
	fs.Parse(args)

	if err := validation.ValidateCollection(*collection); err != nil {
		fail("update failed: %v", err)
	}

	user := a.mustResolve(*token)
	record, err := a.records.Update(user.ID, *collection, *id, []byte(*payload))
	if err != nil {
		fail("update failed: %v", err)
	}
	fmt.Printf("Updated %s record %s\n", record.Collection, record.ID)
}

func (a *app) cmdDelete(args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	token := fs.String("token", "", "Session token (required)")
	collection := fs.String("collection", "", "Collection tag (required)")
	id := fs.String("id", "", "Record id (required)")
	fs.Parse(args)

	if err := validation.ValidateCollection(*collection); err != nil {
		fail("delete failed: %v", err)
	}

	user := a.mustResolve(*token)
	removed, err := a.records.Delete(user.ID, *collection, *id)
	if err != nil {
		fail("delete failed: %v", err)
	}
	if removed {
		fmt.Printf("Deleted record %s\n", *id)
	} else {
		fmt.Printf("No record %s to delete\n", *id)
	}
}

func (a *app) cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	token := fs.String("token", "", "Session token (required)")
	collection := fs.String("collection", "", "Collection tag (required)")
	fs.Parse(args)

	if err := validation.ValidateCollection(*collection); err != nil {
		fail("list failed: %v", err)
	}

	user := a.mustResolve(*token)
	ctx := session.NewContext(user)

	var records []models.Record
	var err error
	if familyID, ok := ctx.CurrentFamilyScope(); ok {
		records, err = a.aggregate.Aggregate(familyID, *collection)
	} else {
		records, err = a.records.List(user.ID, *collection)
	}
	if err != nil {
		fail("list failed: %v", err)
	}

	for _, record := range records {
		fmt.Printf("%s  owner=%s  %s\n", record.ID, record.OwnerID, string(record.Payload))
	}
	fmt.Printf("%d record(s)\n", len(records))
}

func (a *app) cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	token := fs.String("token", "", "Session token (required)")
	output := fs.String("output", "", "Output file path (default: lobohub_YYYYMMDD_HHMMSS.json)")
	fs.Parse(args)

	user := a.mustResolve(*token)
	if !user.HasFamily() {
		fail("you don't belong to a family yet")
	}

	outputPath := *output
	if outputPath == "" {
		outputPath = fmt.Sprintf("lobohub_%s.json", time.Now().Format("20060102_150405"))
	}
	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fail("failed to create output directory: %v", err)
		}
	}

	if err := a.snapshots.ExportToFile(context.Background(), outputPath, user.FamilyID, user.ID); err != nil {
		fail("export failed: %v", err)
	}
	fmt.Printf("Exported family snapshot to %s\n", outputPath)
}

func (a *app) cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	token := fs.String("token", "", "Session token (required)")
	input := fs.String("input", "", "Input file path (required)")
	merge := fs.Bool("merge", false, "Merge by last-modified timestamp instead of replacing collections")
	fs.Parse(args)

	if *input == "" {
		fmt.Println("Error: -input flag is required")
		fs.PrintDefaults()
		os.Exit(1)
	}

	user := a.mustResolve(*token)
	if !user.HasFamily() {
		fail("you don't belong to a family yet")
	}

	file, err := os.Open(*input)
	if err != nil {
		fail("failed to open input file: %v", err)
	}
	defer file.Close()

	var summary *service.ImportSummary
	if *merge {
		summary, err = a.snapshots.MergeImport(context.Background(), file, user.FamilyID)
	} else {
		summary, err = a.snapshots.Import(context.Background(), file, user.FamilyID)
	}
	if err != nil {
		fail("import failed: %v", err)
	}

	for collection, count := range summary.Imported {
		fmt.Printf("  %s: %d record(s)\n", collection, count)
	}
	for _, warning := range summary.Warnings {
		fmt.Printf("  warning: %s\n", warning)
	}
	fmt.Println("Import complete")
}

// mustResolve maps a session token to its user or exits
func (a *app) mustResolve(token string) *models.User {
	if token == "" {
		fail("-token flag is required (run login first)")
	}
	user, err := a.auth.ResolveSession(token)
	if err != nil {
		fail("session invalid: %v", err)
	}
	return user
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func printUsage() {
	fmt.Println("LoboHub local store")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  lobohub register -email <addr> -name <name> -password <pw>")
	fmt.Println("  lobohub login -email <addr> -password <pw>")
	fmt.Println("  lobohub family create -token <t> -name <name>")
	fmt.Println("  lobohub family join -token <t> -code <invite>")
	fmt.Println("  lobohub family invite -token <t> [-email <addr>] [-name <recipient>]")
	fmt.Println("  lobohub family rotate -token <t>")
	fmt.Println("  lobohub add -token <t> -collection <tag> -payload '<json>'")
	fmt.Println("  lobohub update -token <t> -collection <tag> -id <id> -payload '<json>'")
	fmt.Println("  lobohub delete -token <t> -collection <tag> -id <id>")
	fmt.Println("  lobohub list -token <t> -collection <tag>")
	fmt.Println("  lobohub export -token <t> [-output <file>]")
	fmt.Println("  lobohub import -token <t> -input <file> [-merge]")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  LOBOHUB_DB_TYPE        sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  LOBOHUB_DB_PATH        SQLite database path (default: ./lobohub.db)")
	fmt.Println("  LOBOHUB_DATABASE_URL   PostgreSQL or MySQL connection URL")
	fmt.Println("  LOBOHUB_JWT_SECRET     Session token signing secret (required)")
	fmt.Println("  SES_FROM_EMAIL         Sender address for invite email (optional)")
}
