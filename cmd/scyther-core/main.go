// Command scyther-core is the demonstration driver for the verifier core.
// It is deliberately not the project's end-user CLI: a command-line
// interface for parsing a protocol description language is out of scope
// for the core. Instead it builds the Needham-Schroeder(-Lowe) protocol
// in-process via protocol.Builder, the same contract a real front end
// would have to satisfy, and reports the verdict on stdout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/cascremers/scyther-sub001/pkg/protocol"
	"github.com/cascremers/scyther-sub001/pkg/term"
	"github.com/cascremers/scyther-sub001/pkg/unify"
	"github.com/cascremers/scyther-sub001/pkg/verifier"
)

// Exit codes reported to the shell.
const (
	exitNoAttack    = 0
	exitInternal    = 1
	exitNoClaims    = 2
	exitAttackFound = 3
)

func main() {
	var (
		engineName   = pflag.String("engine", "forward", "search engine: forward|backward")
		untyped      = pflag.Bool("untyped", false, "use untyped matching instead of the typed default")
		basic        = pflag.Bool("basic", false, "use basic matching (variables bind to any leaf, ignoring declared types, never to a compound)")
		pruneLevel   = pflag.Int("prune-level", 2, "forward engine prune level: 0 none, 1 stop-at-first-attack, 2 shrink-bound-to-attack-length")
		maxRuns      = pflag.Int("max-runs", 3, "maximum number of runs to instantiate")
		maxTrace     = pflag.Int("max-trace-length", 30, "maximum trace length for the forward engine")
		incremental  = pflag.Bool("incremental-runs", false, "iterate the run bound from 1 upward, stopping at the first bound with an attack")
		fixed        = pflag.Bool("fixed", false, "run the Lowe-fixed variant of the demo protocol instead of the original")
		verbose      = pflag.Bool("verbose", false, "enable debug-level structured logging")
	)
	pflag.Parse()

	log := zap.NewNop()
	if *verbose {
		cfg := zap.NewDevelopmentConfig()
		built, err := cfg.Build()
		if err != nil {
			fmt.Fprintln(os.Stderr, "scyther-core: failed to build logger:", err)
			os.Exit(exitInternal)
		}
		log = built
		defer log.Sync() //nolint:errcheck
	}

	mode := unify.Typed
	switch {
	case *untyped:
		mode = unify.Untyped
	case *basic:
		mode = unify.Basic
	}

	engine := verifier.EngineForward
	if *engineName == "backward" {
		engine = verifier.EngineBackward
	}

	model := buildNSL(*fixed)

	opts := verifier.Options{
		Engine:          engine,
		Mode:            mode,
		PruneLevel:      *pruneLevel,
		MaxTraceLength:  *maxTrace,
		MaxRuns:         *maxRuns,
		IncrementalRuns: *incremental,
		TargetProtocol:  "nsl",
		Logger:          log,
	}

	result := verifier.Verify(model, opts)

	fmt.Printf("search id: %s\n", result.SearchID)
	fmt.Printf("verdict:   %s\n", result.Verdict)
	fmt.Printf("states:    %d\n", result.States)
	fmt.Printf("runs:      %d\n", result.Runs)
	fmt.Printf("attacks:   %d\n", len(result.Attacks))
	for i, a := range result.Attacks {
		fmt.Printf("  attack %d: claim step %d, trace length %d\n", i, a.ClaimStep, len(a.Trace))
	}

	switch result.Verdict {
	case verifier.NoClaims:
		os.Exit(exitNoClaims)
	case verifier.AttackFound:
		os.Exit(exitAttackFound)
	default:
		os.Exit(exitNoAttack)
	}
}

// buildNSL constructs the Needham-Schroeder public-key protocol:
// Initiator and Responder exchange two nonces under each
// other's public key, each claiming secrecy of its own nonce and
// non-injective synchronisation with its peer. When fixed is true, the
// Responder's second message additionally names itself (Lowe's fix),
// closing the man-in-the-middle reflection attack the original protocol
// is vulnerable to.
func buildNSL(fixed bool) *protocol.Model {
	b := protocol.NewBuilder()

	pk := term.NewConst("pk")
	sk := term.NewConst("sk")
	b.InverseKeyPair(pk, sk)
	b.PublicFunction("pk")

	i := term.NewVar("I", term.GlobalRun, []string{"agent"})
	r := term.NewVar("R", term.GlobalRun, []string{"agent"})
	ni := term.NewLocal("ni", term.GlobalRun)
	nr := term.NewLocal("nr", term.GlobalRun)

	l1 := term.NewConst("l1")
	l2 := term.NewConst("l2")
	l3 := term.NewConst("l3")
	claimSecI := term.NewConst("claim-sec-i")
	claimSyncI := term.NewConst("claim-sync-i")

	b.Protocol("nsl").Role("I").RoleVar(i).RoleVar(r).Local(ni).
		Send(l1, i, r, term.NewEncrypt(term.NewTuple(ni, i), term.NewEncrypt(pk, r))).
		Recv(l2, r, i, nsMsg2(fixed, ni, nr, r, i)).
		Send(l3, i, r, term.NewEncrypt(nr, term.NewEncrypt(pk, r))).
		SecretClaim(claimSecI, i, ni).
		SynchClaim(claimSyncI, i, protocol.ClaimNiSynch, []protocol.Label{l1, l2, l3})

	claimSecR := term.NewConst("claim-sec-r")
	claimSyncR := term.NewConst("claim-sync-r")

	b.Protocol("nsl").Role("R").RoleVar(i).RoleVar(r).Local(nr).
		Recv(l1, i, r, term.NewEncrypt(term.NewTuple(ni, i), term.NewEncrypt(pk, r))).
		Send(l2, r, i, nsMsg2(fixed, ni, nr, r, i)).
		Recv(l3, i, r, term.NewEncrypt(nr, term.NewEncrypt(pk, r))).
		SecretClaim(claimSecR, r, nr).
		SynchClaim(claimSyncR, r, protocol.ClaimNiSynch, []protocol.Label{l1, l2, l3})

	b.Untrusted(term.NewConst("Eve"))

	return b.Build()
}

// nsMsg2 builds the Responder's second message, encrypted under the
// Initiator's public key: {ni, nr}pk(I) in the original protocol,
// {ni, {nr, R}}pk(I) under Lowe's fix, which names the Responder inside
// the encryption and closes the reflection attack the original protocol
// is vulnerable to.
func nsMsg2(fixed bool, ni, nr, r, i *term.Term) *term.Term {
	payload := term.NewTuple(ni, nr)
	if fixed {
		payload = term.NewTuple(ni, term.NewTuple(nr, r))
	}
	return term.NewEncrypt(payload, term.NewEncrypt(term.NewConst("pk"), i))
}
