// Package tzrecovery recovers a forgotten Tezos fundraiser passphrase when the
// mnemonic, the registration email and the target address are known and the
// passphrase is partially remembered.
//
// The search space is described by a Plan: lists of fragments for each slot
// (prefix salt L, variable salt V, components W X Y Z, trailing salt E) plus a
// set of templates giving the slot orderings. Every candidate is run through the
// fundraiser derivation (PBKDF2-HMAC-SHA512 over the mnemonic, salted with
// "mnemonic" + NFKD(email + passphrase), Ed25519 keypair from the first 32 seed
// bytes, BLAKE2b-160 public key hash, Base58Check with the tz1 prefix) and scored
// against the target address.
//
// WARNING: This package is intended for recovering access to your own wallet.
//
// Basic Usage:
//
//	params := tzrecovery.Params{
//		Target:   "tz1...",
//		Email:    "me@example.org",
//		Mnemonic: "fifteen words ...",
//	}
//	plan, err := tzrecovery.NewPlan(tzrecovery.PlanConfig{
//		Components: [4][]string{{"hunter"}, {"2"}, nil, nil},
//		Extra:      []string{"", "!", "?"},
//		MinLen:     6,
//		MaxLen:     64,
//	})
//	client := tzrecovery.NewClient()
//	result, err := client.Recover(ctx, params, plan)
//
// Building slot lists from generators:
//
//	words, _ := tzrecovery.BuildFragments(tzrecovery.FragmentConfig{
//		Alphabet:    "abc",
//		MinLen:      2,
//		MaxLen:      3,
//		RepeatLimit: 1,
//		Capitalize:  tzrecovery.Capitalization{First: true},
//	})
//	salts, _ := tzrecovery.MixSalts(tzrecovery.SaltConfig{Chars: "!?", Arity: 2, IncludeEmpty: true})
//
// Customizing the search (defaults use every CPU but one):
//
//	strategy := tzrecovery.NewParallelSearch().WithConfig(tzrecovery.SearchConfig{
//		NumWorkers: 8,
//		SignalRate: 4,
//		Progress:   func(s tzrecovery.Stats) { fmt.Println(s.TotalAttempts, s.BestDistance) },
//	})
//	client = tzrecovery.NewClient().WithStrategy(strategy)
//
// See cmd/tzrecover for the command line front end.
package tzrecovery
