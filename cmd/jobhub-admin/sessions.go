package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jobhub/ui-api/internal/bootstrap"
	domainauth "github.com/jobhub/ui-api/internal/domain/auth"
)

// sessionKeyPrefix matches the prefix the HTTP service uses when persisting
// login sessions. Keep the two in sync or these commands go blind.
const sessionKeyPrefix = "session:"

const sessionScanBatchSize = 100

type listSessionsOptions struct {
	Timeout time.Duration
	User    string
}

type clearSessionsOptions struct {
	Timeout time.Duration
	User    string
	All     bool
	DryRun  bool
	Yes     bool
}

func (c clearSessionsOptions) IsDryRun() bool { return c.DryRun }
func (c clearSessionsOptions) IsYes() bool    { return c.Yes }

func (c clearSessionsOptions) GetWarning() string {
	return "WARNING: deleting sessions forces the affected users to log in again."
}

func (c clearSessionsOptions) GetTarget() string {
	if c.All {
		return "all active sessions"
	}
	return fmt.Sprintf("sessions for user %q", c.User)
}

// sessionRecord pairs a decoded session with its Redis key and remaining TTL.
type sessionRecord struct {
	Key     string
	TTL     time.Duration
	Session domainauth.Session
}

func runListSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parseListSessionsFlags(args)
	if err != nil {
		return err
	}

	return withRedis(cmdCtx, opts.Timeout, func(ctx context.Context, client redis.UniversalClient) error {
		records, scanErr := scanSessions(ctx, client, opts.User)
		if scanErr != nil {
			return scanErr
		}

		if len(records) == 0 {
			return writeln(os.Stdout, "No active sessions found.")
		}

		return printSessionTable(records)
	})
}

func runClearSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parseClearSessionsFlags(args)
	if err != nil {
		return err
	}

	return withRedis(cmdCtx, opts.Timeout, func(ctx context.Context, client redis.UniversalClient) error {
		records, scanErr := scanSessions(ctx, client, opts.User)
		if scanErr != nil {
			return scanErr
		}

		if len(records) == 0 {
			return writeln(os.Stdout, "No matching sessions found; nothing to delete.")
		}

		if opts.DryRun {
			if writeErr := writef(os.Stdout, "Dry run: %d session(s) would be deleted.\n\n", len(records)); writeErr != nil {
				return writeErr
			}
			return printSessionTable(records)
		}

		if confirmErr := confirmAction(opts, fmt.Sprintf("delete %d session(s)", len(records))); confirmErr != nil {
			return confirmErr
		}

		keys := make([]string, 0, len(records))
		for _, rec := range records {
			keys = append(keys, rec.Key)
		}
		deleted, delErr := client.Del(ctx, keys...).Result()
		if delErr != nil {
			return fmt.Errorf("delete sessions: %w", delErr)
		}

		cmdCtx.Logger.InfoContext(ctx, "sessions cleared",
			"deleted", deleted,
			"user_filter", opts.User,
		)
		return writef(os.Stdout, "Deleted %d session(s).\n", deleted)
	})
}

func parseListSessionsFlags(args []string) (listSessionsOptions, error) {
	fs := flag.NewFlagSet("list-sessions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := listSessionsOptions{
		Timeout: time.Minute,
	}

	fs.DurationVar(&opts.Timeout, "timeout", time.Minute, "Maximum duration to spend scanning sessions")
	fs.StringVar(&opts.User, "user", "", "Only show sessions belonging to this user ID")

	if err := fs.Parse(args); err != nil {
		return listSessionsOptions{}, err
	}

	if opts.Timeout <= 0 {
		return listSessionsOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func parseClearSessionsFlags(args []string) (clearSessionsOptions, error) {
	fs := flag.NewFlagSet("clear-sessions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := clearSessionsOptions{
		Timeout: time.Minute,
	}

	fs.DurationVar(&opts.Timeout, "timeout", time.Minute, "Maximum duration to spend clearing sessions")
	fs.StringVar(&opts.User, "user", "", "Only delete sessions belonging to this user ID")
	fs.BoolVar(&opts.All, "all", false, "Delete every active session")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Show sessions that would be deleted without deleting them")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return clearSessionsOptions{}, err
	}

	if opts.Timeout <= 0 {
		return clearSessionsOptions{}, errors.New("--timeout must be greater than zero")
	}
	if opts.All == (opts.User != "") {
		return clearSessionsOptions{}, errors.New("specify exactly one of --all or --user")
	}

	return opts, nil
}

func withRedis(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, redis.UniversalClient) error,
) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
		RedisConfig: cmdCtx.Config.Redis,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", cerr)
		}
	}()

	return f(ctx, client)
}

// scanSessions walks all session keys with SCAN so large keyspaces never
// block Redis the way KEYS would. Records that fail to decode are skipped
// with a warning rather than aborting the whole listing.
func scanSessions(ctx context.Context, client redis.UniversalClient, userFilter string) ([]sessionRecord, error) {
	var records []sessionRecord

	iter := client.Scan(ctx, 0, sessionKeyPrefix+"*", sessionScanBatchSize).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		raw, err := client.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // expired between SCAN and GET
			}
			return nil, fmt.Errorf("get session %q: %w", key, err)
		}

		var sess domainauth.Session
		if unmarshalErr := json.Unmarshal([]byte(raw), &sess); unmarshalErr != nil {
			if writeErr := writef(os.Stderr, "skipping undecodable session key %q: %v\n", key, unmarshalErr); writeErr != nil {
				return nil, writeErr
			}
			continue
		}

		if userFilter != "" && sess.UserID != userFilter {
			continue
		}

		ttl, ttlErr := client.TTL(ctx, key).Result()
		if ttlErr != nil {
			return nil, fmt.Errorf("ttl for session %q: %w", key, ttlErr)
		}

		records = append(records, sessionRecord{
			Key:     key,
			TTL:     ttl,
			Session: sess,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Session.ExpiresAt.Before(records[j].Session.ExpiresAt)
	})

	return records, nil
}

func printSessionTable(records []sessionRecord) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	if err := writeln(w, "SESSION\tUSER\tNAME\tROLE\tBLOCKED\tEXPIRES\tTTL"); err != nil {
		return err
	}
	for _, rec := range records {
		sess := rec.Session
		name := strings.TrimSpace(sess.FirstName + " " + sess.LastName)
		if err := writef(w, "%s\t%s\t%s\t%s\t%t\t%s\t%s\n",
			strings.TrimPrefix(rec.Key, sessionKeyPrefix),
			sess.UserID,
			name,
			sess.Role,
			sess.IsBlocked,
			sess.ExpiresAt.UTC().Format(time.RFC3339),
			rec.TTL.Truncate(time.Second),
		); err != nil {
			return err
		}
	}

	return w.Flush()
}
