// Package git provides a git-backed rule-set source.
//
// Deployments that manage eligibility rules as code keep the YAML rule-set
// documents in a git repository. This package clones that repository, loads
// the documents into the same registry the file source uses, and polls the
// remote for new commits, reloading only when rule-set files change.
//
// # Basic Usage
//
//	src, err := git.NewSource(&cfg.RuleSets.Git, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := src.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer src.Stop()
//
//	rs, err := src.Resolve(ctx, "skilled_worker")
//
// # Authentication
//
// Supports multiple authentication methods:
//   - Token-based (HTTPS): GitHub, GitLab, Bitbucket tokens
//   - SSH key-based: public key authentication
//   - None: public repositories
//
// # Reload Safety
//
// A commit that leaves the checkout unparseable or structurally invalid
// never displaces the registry: the previously loaded rule sets keep
// serving, the failure is logged, and the next good commit heals the
// source on a later poll.
package git
