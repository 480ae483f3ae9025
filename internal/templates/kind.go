package templates

import (
	"path"
	"sort"
	"strings"
)

// Feature identifies a product feature that templates are published for
type Feature string

const (
	FeatureSpeechToText Feature = "SPEECH-TO-TEXT"
)

// Kind identifies one supported stack and variant pair. The set is closed:
// every Kind is declared here together with the rule deciding which of its
// files receive the API key.
type Kind string

const (
	KindDotnetSelfContained Kind = "dotnet/self-contained"
	KindDotnetMinimalAPI    Kind = "dotnet/minimal-api"
	KindNodeSelfContained   Kind = "nodejs/self-contained"
	KindNodeExpress         Kind = "nodejs/express"
	KindNodeNextJS          Kind = "nodejs/nextjs"
)

// Stack names as presented to users
const (
	StackDotnet = "DOTNET"
	StackNodeJS = "NODEJS"
)

// SecretRule matches the relative paths whose content embeds the API key
// placeholder. Exact compares the whole slash-separated relative path,
// Contains matches a path fragment anywhere in it.
type SecretRule struct {
	Exact    string
	Contains string
}

// Matches reports whether relPath is selected by the rule
func (r SecretRule) Matches(relPath string) bool {
	p := path.Clean(strings.ReplaceAll(relPath, "\\", "/"))
	switch {
	case r.Exact != "":
		return p == r.Exact
	case r.Contains != "":
		return strings.Contains(p, r.Contains)
	}
	return false
}

// ProjectCheck describes how the working directory is inspected before a
// kind is materialized
type ProjectCheck int

const (
	ProjectCheckNone ProjectCheck = iota
	// ProjectCheckDotnet warns when no *.csproj is present
	ProjectCheckDotnet
	// ProjectCheckNextJS refuses to run outside a Next.js project
	ProjectCheckNextJS
)

type kindInfo struct {
	stack   string
	variant string
	secrets []SecretRule
	check   ProjectCheck
	hints   []string
}

var kinds = map[Kind]kindInfo{
	KindDotnetSelfContained: {
		stack:   StackDotnet,
		variant: "self-contained",
		secrets: []SecretRule{{Exact: "WoolBallSpeechToTextWebService.cs"}},
		check:   ProjectCheckDotnet,
	},
	KindDotnetMinimalAPI: {
		stack:   StackDotnet,
		variant: "minimal-api",
		secrets: []SecretRule{{Exact: "WoolBallSpeechToTextWebService.cs"}},
		hints: []string{
			"cd {{root}}",
			"dotnet run",
		},
	},
	KindNodeSelfContained: {
		stack:   StackNodeJS,
		variant: "self-contained",
		secrets: []SecretRule{{Exact: "woolball-speech-to-text.js"}},
		hints: []string{
			"Copy the files to your project",
			"Import and use as shown in usage.js",
		},
	},
	KindNodeExpress: {
		stack:   StackNodeJS,
		variant: "express",
		secrets: []SecretRule{{Exact: "server.js"}},
		hints: []string{
			"cd {{root}}",
			"npm install",
			"node server.js",
		},
	},
	KindNodeNextJS: {
		stack:   StackNodeJS,
		variant: "nextjs",
		secrets: []SecretRule{{Contains: "api/speech-to-text/route.ts"}},
		check:   ProjectCheckNextJS,
		hints: []string{
			"API endpoint: http://localhost:3000/api/speech-to-text",
			"Demo page: http://localhost:3000/speech-to-text",
		},
	},
}

// Kinds returns every supported kind in a stable order
func Kinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// KindFor maps a stack and variant to its Kind
func KindFor(stack, variant string) (Kind, bool) {
	stack = strings.ToUpper(strings.TrimSpace(stack))
	variant = strings.ToLower(strings.TrimSpace(variant))
	for k, info := range kinds {
		if info.stack == stack && info.variant == variant {
			return k, true
		}
	}
	return "", false
}

// Valid reports whether k is one of the declared kinds
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

func (k Kind) Stack() string   { return kinds[k].stack }
func (k Kind) Variant() string { return kinds[k].variant }

// Substitutable reports whether the file at relPath receives the API key
func (k Kind) Substitutable(relPath string) bool {
	for _, rule := range kinds[k].secrets {
		if rule.Matches(relPath) {
			return true
		}
	}
	return false
}

// ProjectCheck returns the working directory check for k
func (k Kind) ProjectCheck() ProjectCheck {
	return kinds[k].check
}

// Hints returns the next steps shown once files are written, with {{root}}
// expanded to the destination root
func (k Kind) Hints(root string) []string {
	src := kinds[k].hints
	out := make([]string, len(src))
	for i, h := range src {
		out[i] = strings.ReplaceAll(h, "{{root}}", root)
	}
	return out
}
