package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/peterh/liner"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"moviegate/internal/render"
	"moviegate/services/catalog"
	"moviegate/services/wallet"
)

const historyFile = ".moviegate_history"

var shellCommands = []string{"connect", "search", "popular", "more", "show", "close", "whoami", "help", "quit"}

func newBrowseCmd(opts *rootOptions) *cobra.Command {
	var (
		rpcURL   string
		noWallet bool
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog in an interactive shell",
		Long: `Opens an interactive shell. The wallet is reached over JSON-RPC, for
example a local Frame wallet on http://127.0.0.1:1248. Account changes in the
wallet are picked up by polling.`,
		Example: `  moviegate browse
  moviegate browse --rpc http://127.0.0.1:1248`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if rpcURL != "" {
				cfg.Wallet.RPCURL = rpcURL
			}

			fs := afero.NewOsFs()
			client, err := newMetadataClient(cfg, fs)
			if err != nil {
				return err
			}

			var provider wallet.Provider
			if !noWallet {
				rpc := wallet.NewRPCProvider(cfg.Wallet.RPCURL, nil, cfg.Wallet.PollInterval)
				defer rpc.Close()
				provider = rpc
			}

			sh := newShell(cmd.Context(), cmd.OutOrStdout(), wallet.NewGate(provider), catalog.New(client))
			return sh.run(fs)
		},
	}

	cmd.Flags().StringVar(&rpcURL, "rpc", "", "wallet JSON-RPC endpoint (overrides wallet.rpc_url)")
	cmd.Flags().BoolVar(&noWallet, "no-wallet", false, "start without a wallet provider")

	return cmd
}

// switchPhase tracks an account change made in the wallet, so the shell can
// redraw once the catalog reload it triggered has settled.
type switchPhase int

const (
	switchIdle switchPhase = iota
	switchPending
	switchAnnounced
	switchLoading
)

// syncWriter serializes writes from the prompt loop and controller listeners.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (sw *syncWriter) Write(p []byte) (int, error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.w.Write(p)
}

type shell struct {
	ctx     context.Context
	out     io.Writer
	gate    *wallet.Gate
	ctrl    *catalog.Controller
	gateErr string

	mu    sync.Mutex
	phase switchPhase
}

func newShell(ctx context.Context, out io.Writer, gate *wallet.Gate, ctrl *catalog.Controller) *shell {
	return &shell{ctx: ctx, out: &syncWriter{w: out}, gate: gate, ctrl: ctrl}
}

// start restores an already-authorized account and follows account changes.
func (s *shell) start() {
	s.ctrl.OnChange(s.onChange)
	if addr, ok := s.gate.CheckExistingSession(s.ctx); ok {
		s.logIntent(s.ctrl.EstablishSession(s.ctx, addr))
	}
	err := s.gate.OnAccountsChanged(s.accountsChanged)
	if err != nil && !errors.Is(err, wallet.ErrProviderUnavailable) {
		log.WithError(err).Warn("could not follow wallet account changes")
	}
}

// accountsChanged runs on the provider's goroutine.
func (s *shell) accountsChanged(addr string, ok bool) {
	current := s.ctrl.State().Wallet.Address
	if (ok && addr == current) || (!ok && current == "") {
		return
	}
	s.mu.Lock()
	s.phase = switchPending
	s.mu.Unlock()

	if ok {
		s.ctrl.Dispatch(s.ctx, catalog.SessionEstablished{Address: addr})
		return
	}
	s.ctrl.Dispatch(s.ctx, catalog.SessionCleared{})
}

func (s *shell) onChange(snap catalog.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == switchIdle {
		return
	}
	if !snap.Wallet.Connected() {
		s.phase = switchIdle
		fmt.Fprintln(s.out, "\nWallet disconnected.\n"+render.Gateway("", s.gate.Available()))
		return
	}
	if s.phase == switchPending {
		s.phase = switchAnnounced
		fmt.Fprintf(s.out, "\nWallet switched to %s. Reloading...\n", snap.Wallet.ShortAddress())
	}
	if snap.Catalog.Loading {
		s.phase = switchLoading
		return
	}
	if s.phase == switchLoading {
		s.phase = switchIdle
		fmt.Fprint(s.out, s.view(snap))
	}
}

func (s *shell) run(fs afero.Fs) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(input string) []string {
		var out []string
		for _, c := range shellCommands {
			if strings.HasPrefix(c, strings.ToLower(input)) {
				out = append(out, c)
			}
		}
		return out
	})

	historyPath := historyFile
	if home, err := os.UserHomeDir(); err == nil {
		historyPath = filepath.Join(home, historyFile)
	}
	if f, err := fs.Open(historyPath); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := fs.Create(historyPath); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	s.start()
	s.redraw()

	for {
		if s.ctx.Err() != nil {
			break
		}
		input, err := line.Prompt("moviegate> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if quit := s.execute(input); quit {
			break
		}
	}

	s.ctrl.Wait()
	return nil
}

// execute runs one shell command and reports whether the shell should exit.
func (s *shell) execute(input string) bool {
	name, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	name = strings.ToLower(name)
	arg = strings.TrimSpace(arg)

	switch name {
	case "quit", "exit":
		return true
	case "help":
		s.help()
		return false
	case "connect":
		s.connect()
		return false
	case "whoami":
		s.whoami()
		return false
	}

	if !s.ctrl.State().Wallet.Connected() {
		fmt.Fprintln(s.out, render.Gateway(s.gateErr, s.gate.Available()))
		return false
	}

	switch name {
	case "search":
		s.logIntent(s.ctrl.Search(s.ctx, arg))
		s.redraw()
	case "popular":
		s.logIntent(s.ctrl.LoadPopular(s.ctx, 1))
		s.redraw()
	case "more":
		err := s.ctrl.LoadMore(s.ctx)
		if errors.Is(err, catalog.ErrLoadMoreUnavailable) {
			fmt.Fprintln(s.out, "Nothing more to load right now.")
			return false
		}
		s.logIntent(err)
		s.redraw()
	case "show":
		s.show(arg)
	case "close":
		s.ctrl.CloseDetails()
		s.redraw()
	default:
		fmt.Fprintf(s.out, "Unknown command %q. Type 'help' for a list.\n", name)
	}
	return false
}

func (s *shell) connect() {
	if s.ctrl.State().Wallet.Connected() {
		s.whoami()
		return
	}
	fmt.Fprintln(s.out, "Connecting...")
	addr, err := s.gate.RequestConnection(s.ctx)
	if err != nil {
		s.gateErr = wallet.UserMessage(err)
		fmt.Fprintln(s.out, render.Gateway(s.gateErr, s.gate.Available()))
		return
	}
	s.gateErr = ""
	s.logIntent(s.ctrl.EstablishSession(s.ctx, addr))
	s.redraw()
}

func (s *shell) show(arg string) {
	n, err := strconv.Atoi(arg)
	results := s.ctrl.State().Catalog.Results
	if err != nil || n < 1 || n > len(results) {
		fmt.Fprintf(s.out, "No movie numbered %q.\n", arg)
		return
	}
	s.ctrl.Select(results[n-1])
	fmt.Fprintln(s.out, render.Details(results[n-1]))
}

func (s *shell) whoami() {
	w := s.ctrl.State().Wallet
	if !w.Connected() {
		fmt.Fprintln(s.out, "Not connected.")
		return
	}
	fmt.Fprintln(s.out, render.Header(w))
	fmt.Fprintln(s.out, wallet.DisplayAddress(w.Address))
}

func (s *shell) help() {
	fmt.Fprint(s.out, `Commands:
  connect        connect a wallet account
  search <text>  search titles (blank shows popular movies)
  popular        reload popular movies
  more           load the next page
  show <n>       show details for result n
  close          close the details view
  whoami         show the connected account
  help           show this list
  quit           leave the shell
`)
}

func (s *shell) redraw() {
	fmt.Fprint(s.out, s.view(s.ctrl.State()))
}

// view renders snap as one block so concurrent redraws do not interleave.
func (s *shell) view(snap catalog.Snapshot) string {
	if !snap.Wallet.Connected() {
		return render.Gateway(s.gateErr, s.gate.Available()) + "\n"
	}
	var b strings.Builder
	b.WriteString(render.Header(snap.Wallet) + "\n")
	b.WriteString(render.Catalog(snap.Catalog))
	if snap.Catalog.Selected != nil {
		b.WriteString(render.Details(*snap.Catalog.Selected) + "\n")
	}
	return b.String()
}

func (s *shell) logIntent(err error) {
	if err != nil {
		log.WithError(err).Debug("catalog request failed")
	}
}
