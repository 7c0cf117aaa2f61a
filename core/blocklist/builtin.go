package blocklist

import "github.com/siftsec/sift/core/issue"

// Builtin returns the default blocklist table. Entries are grouped by the
// node kind they fire on: import declarations for banned packages, call
// expressions for banned functions.
func Builtin() Table {
	imports := []Entry{
		{
			Name: "telnet",
			ID:   "B401",
			QualifiedNames: []string{
				"github.com/ziutek/telnet",
				"github.com/reiver/go-telnet",
			},
			Message:  "A telnet-related package is being imported: {name}. Telnet transmits everything in cleartext; use SSH or another encrypted protocol.",
			Severity: issue.High,
			Cwe:      issue.CweCleartextTransport,
		},
		{
			Name:           "weak-hash-import",
			ID:             "B303",
			QualifiedNames: []string{"crypto/md5", "crypto/sha1"},
			Message:        "Import of weak cryptographic hash package {name}.",
			Severity:       issue.Medium,
			Cwe:            issue.CweBrokenCrypto,
		},
		{
			Name:           "broken-cipher-import",
			ID:             "B304",
			QualifiedNames: []string{"crypto/des", "crypto/rc4"},
			Message:        "Import of broken cipher package {name}. DES and RC4 are not considered secure.",
			Severity:       issue.High,
			Cwe:            issue.CweBrokenCrypto,
		},
		{
			Name:           "http-cgi",
			ID:             "B412",
			QualifiedNames: []string{"net/http/cgi"},
			Message:        "Import of {name}: CGI request handling is vulnerable to httpoxy-style header attacks.",
			Severity:       issue.Medium,
			Cwe:            issue.CweCleartextTransport,
		},
	}

	calls := []Entry{
		{
			Name: "weak-hash-call",
			ID:   "B324",
			QualifiedNames: []string{
				"crypto/md5.New",
				"crypto/md5.Sum",
				"crypto/sha1.New",
				"crypto/sha1.Sum",
			},
			Message:  "Use of weak cryptographic hash function {name}.",
			Severity: issue.Medium,
			Cwe:      issue.CweBrokenCrypto,
		},
		{
			Name: "weak-random",
			ID:   "B311",
			QualifiedNames: []string{
				"math/rand.Int",
				"math/rand.Intn",
				"math/rand.Int31",
				"math/rand.Int63",
				"math/rand.Float64",
				"math/rand.Read",
			},
			Message:  "Standard pseudo-random generator {name} is not suitable for security or cryptographic purposes.",
			Severity: issue.Low,
			Cwe:      issue.CweWeakRandom,
		},
	}

	return Table{
		"ImportSpec": imports,
		"CallExpr":   calls,
	}
}
