package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"webvh.dev/didlog/cidutil"
	"webvh.dev/didlog/didlog"
	"webvh.dev/didlog/integrity"
	"webvh.dev/didlog/jcs"
	"webvh.dev/didlog/keys"
	"webvh.dev/didlog/schema"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "hash":
		return cmdHash(args[1:], out, errOut)
	case "cid":
		return cmdCID(args[1:], out, errOut)
	case "scid":
		return cmdSCID(args[1:], out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "validate":
		return cmdValidate(args[1:], out, errOut)
	case "sign":
		return cmdSign(args[1:], out, errOut)
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "didlog: DID log hashing, signing and verification CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  didlog hash <file.json>")
	fmt.Fprintln(w, "  didlog cid [--raw] <file>")
	fmt.Fprintln(w, "  didlog scid <log.jsonl>")
	fmt.Fprintln(w, "  didlog verify [--schema <file>] [--no-schema] <log.jsonl>")
	fmt.Fprintln(w, "  didlog validate [--schema <file>] [--all] <entry.json>")
	fmt.Fprintln(w, "  didlog sign --verification-method <vm> (--key <multibase> | --signer <name> [--signer-role <role>] | --key-file <path>) [--purpose <p>] [--challenge <c>] [--domain <d>] [--created <RFC3339>] <doc.json>")
	fmt.Fprintln(w, "  didlog key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  didlog key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  didlog key list")
	fmt.Fprintln(w, "  didlog key export --name <name> [--role <role>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - hash prints the content address: multibase(multihash(canonicalize(JSON)))")
	fmt.Fprintln(w, "  - cid prints an archival CIDv1 (raw + sha2-256); --raw skips JSON canonicalization")
	fmt.Fprintln(w, "  - logs are JSON Lines, one entry per line")
	fmt.Fprintln(w, "  - keys are stored under ~/.didlog/keys/<name> (0600 private key files)")
	fmt.Fprintln(w, "  - sign writes the secured document to stdout")
}

func cmdHash(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: didlog hash <file.json>")
		return 2
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(fs.Arg(0)), err)
		return 1
	}
	var h jcs.Hasher
	address, err := h.Base58BtcEncodeMultihash(json.RawMessage(b))
	if err != nil {
		fmt.Fprintf(errOut, "hash: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, address)
	return 0
}

func cmdCID(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("cid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var raw bool
	fs.BoolVar(&raw, "raw", false, "Derive the CID from the raw file bytes instead of canonical JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: didlog cid [--raw] <file>")
		return 2
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(fs.Arg(0)), err)
		return 1
	}
	if !raw {
		b, err = jcs.CanonicalizeRaw(b)
		if err != nil {
			fmt.Fprintf(errOut, "canonicalize: %v\n", err)
			return 1
		}
	}
	_, _ = fmt.Fprintln(out, cidutil.CIDv1RawSHA256(b))
	return 0
}

func cmdSCID(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("scid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: didlog scid <log.jsonl>")
		return 2
	}
	log, code := readLog(fs.Arg(0), errOut)
	if code != 0 {
		return code
	}
	scid, err := didlog.ComputeSCID(log.Genesis())
	if err != nil {
		fmt.Fprintf(errOut, "scid: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, scid)
	return 0
}

func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var schemaPath string
	var noSchema bool
	fs.StringVar(&schemaPath, "schema", "", "Entry schema file (defaults to the embedded schema)")
	fs.BoolVar(&noSchema, "no-schema", false, "Skip schema validation, verify the chain only")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: didlog verify [--schema <file>] [--no-schema] <log.jsonl>")
		return 2
	}
	log, code := readLog(fs.Arg(0), errOut)
	if code != 0 {
		return code
	}

	var opts didlog.VerifyOptions
	if !noSchema {
		validator, code := loadValidator(schemaPath, errOut)
		if code != 0 {
			return code
		}
		opts.Validator = validator
	}
	if err := log.Verify(opts); err != nil {
		fmt.Fprintf(errOut, "verify: %v\n", err)
		return 1
	}

	did, err := log.Genesis().DID()
	if err != nil {
		fmt.Fprintf(errOut, "verify: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "DID: %s\n", did)
	fmt.Fprintf(out, "Entries: %d\n", log.Len())
	fmt.Fprintf(out, "Latest: %s\n", log.Latest().VersionID())
	return 0
}

func cmdValidate(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var schemaPath string
	var all bool
	fs.StringVar(&schemaPath, "schema", "", "Entry schema file (defaults to the embedded schema)")
	fs.BoolVar(&all, "all", false, "Report every violation instead of the first")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: didlog validate [--schema <file>] [--all] <entry.json>")
		return 2
	}
	validator, code := loadValidator(schemaPath, errOut)
	if code != 0 {
		return code
	}
	if all {
		validator.Mode = schema.AllErrors
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(fs.Arg(0)), err)
		return 1
	}
	if err := validator.Validate(string(b)); err != nil {
		fmt.Fprintf(errOut, "invalid: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, "OK")
	return 0
}

func cmdSign(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var verificationMethod string
	var purpose string
	var challenge string
	var domain string
	var created string
	var keyText string
	var signerName string
	var signerRole string
	var keyFile string

	fs.StringVar(&verificationMethod, "verification-method", "", "Verification method reference recorded in the proof (defaults to did:key of the signer)")
	fs.StringVar(&purpose, "purpose", "assertionMethod", "Proof purpose")
	fs.StringVar(&challenge, "challenge", "", "Optional proof challenge (e.g. the entry's versionId)")
	fs.StringVar(&domain, "domain", "", "Optional proof domain")
	fs.StringVar(&created, "created", "", "Proof creation time as RFC3339 (defaults to now UTC)")
	fs.StringVar(&keyText, "key", "", "Inline multibase signing key")
	fs.StringVar(&signerName, "signer", "", "Use a stored key by name (from 'didlog key init')")
	fs.StringVar(&signerRole, "signer-role", "", "When using --signer, optionally use a derived role key")
	fs.StringVar(&keyFile, "key-file", "", "Path to a key file created by 'didlog key init/derive'")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: didlog sign [flags] <doc.json>")
		return 2
	}
	if keyText == "" && signerName == "" && keyFile == "" {
		fmt.Fprintln(errOut, "missing signer: use --key, --signer, or --key-file")
		return 2
	}
	if keyText != "" && (signerName != "" || keyFile != "") {
		fmt.Fprintln(errOut, "conflicting signer flags: --key cannot be combined with --signer or --key-file")
		return 2
	}
	if signerName != "" && keyFile != "" {
		fmt.Fprintln(errOut, "conflicting signer flags: --signer cannot be combined with --key-file")
		return 2
	}

	createdAt := time.Now().UTC()
	if created != "" {
		t, err := time.Parse(time.RFC3339, created)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --created (expected RFC3339): %v\n", err)
			return 2
		}
		createdAt = t
	}

	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	pair, err := ks.LoadKeyPair(keyText, signerName, signerRole, keyFile)
	if err != nil {
		fmt.Fprintf(errOut, "invalid signer: %v\n", err)
		return 2
	}
	if verificationMethod == "" {
		vk := pair.Verifying.ToMultibase()
		verificationMethod = "did:key:" + vk + "#" + vk
	}

	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(fs.Arg(0)), err)
		return 1
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		fmt.Fprintf(errOut, "invalid document: %v\n", err)
		return 1
	}

	suite := &integrity.Suite{SigningKey: pair.Signing, VerifyingKey: pair.Verifying}
	secured, err := suite.AddProof(doc, integrity.ProofOptions{
		Created:            createdAt,
		VerificationMethod: verificationMethod,
		ProofPurpose:       purpose,
		Challenge:          challenge,
		Domain:             domain,
	})
	if err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}
	securedBytes, err := json.Marshal(secured)
	if err != nil {
		fmt.Fprintf(errOut, "serialize: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, string(securedBytes))
	return 0
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printKeyUsage(errOut)
		return 2
	}
	switch args[0] {
	case "init":
		return cmdKeyInit(args[1:], out, errOut)
	case "derive":
		return cmdKeyDerive(args[1:], out, errOut)
	case "list":
		return cmdKeyList(args[1:], out, errOut)
	case "export":
		return cmdKeyExport(args[1:], out, errOut)
	case "help", "-h", "--help":
		printKeyUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n\n", args[0])
		printKeyUsage(errOut)
		return 2
	}
}

func printKeyUsage(w io.Writer) {
	fmt.Fprintln(w, "didlog key: minimal local key management")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  didlog key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  didlog key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  didlog key list")
	fmt.Fprintln(w, "  didlog key export --name <name> [--role <role>]")
}

func cmdKeyInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key init", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var seedHex string
	var force bool

	fs.StringVar(&name, "name", "", "Key name (directory under ~/.didlog/keys)")
	fs.StringVar(&seedHex, "seed-hex", "", "Optional ed25519 seed as 64 hex chars (for reproducible demos)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := keys.CheckKeyName(name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}

	var seed []byte
	if seedHex != "" {
		seed, err = hex.DecodeString(seedHex)
		if err != nil || len(seed) != ed25519.SeedSize {
			fmt.Fprintln(errOut, "invalid --seed-hex: expected 64 hex chars (32 bytes)")
			return 2
		}
	} else {
		seed = make([]byte, ed25519.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			fmt.Fprintf(errOut, "rand: %v\n", err)
			return 1
		}
	}

	verifying, rootPath, err := ks.InitializeRootKey(name, seed, force)
	if err != nil {
		fmt.Fprintf(errOut, "write key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created root key: %s\n", verifying)
	fmt.Fprintf(out, "Stored at: %s\n", rootPath)
	return 0
}

func cmdKeyDerive(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key derive", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var from string
	var role string
	var force bool

	fs.StringVar(&from, "from", "", "Root key name")
	fs.StringVar(&role, "role", "", "Role identifier (e.g. update, witness)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if from == "" {
		fmt.Fprintln(errOut, "missing --from")
		return 2
	}
	if role == "" {
		fmt.Fprintln(errOut, "missing --role")
		return 2
	}
	if err := keys.CheckKeyName(from); err != nil {
		fmt.Fprintf(errOut, "invalid --from: %v\n", err)
		return 2
	}
	if err := keys.CheckRole(role); err != nil {
		fmt.Fprintf(errOut, "invalid --role: %v\n", err)
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	verifying, rolePath, err := ks.DeriveKeyFromRole(from, role, force)
	if err != nil {
		fmt.Fprintf(errOut, "derive role key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created role key: %s\n", verifying)
	fmt.Fprintf(out, "Stored at: %s\n", rolePath)
	return 0
}

func cmdKeyExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key export", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var role string

	fs.StringVar(&name, "name", "", "Key name")
	fs.StringVar(&role, "role", "", "Optional role (if set, exports derived role key)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := keys.CheckKeyName(name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}
	if role != "" {
		if err := keys.CheckRole(role); err != nil {
			fmt.Fprintf(errOut, "invalid --role: %v\n", err)
			return 2
		}
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	verifying, err := ks.ExportKey(name, role)
	if err != nil {
		fmt.Fprintf(errOut, "export key: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, verifying)
	return 0
}

func cmdKeyList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	entries, err := ks.ListKeys()
	if err != nil {
		fmt.Fprintf(errOut, "list keys: %v\n", err)
		return 1
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s\n", e.Identifier)
		for _, r := range e.Roles {
			fmt.Fprintf(out, "  - %s\n", r)
		}
	}
	return 0
}

func readLog(path string, errOut io.Writer) (*didlog.Log, int) {
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(path), err)
		return nil, 1
	}
	log, err := didlog.ParseLog(string(b))
	if err != nil {
		fmt.Fprintf(errOut, "parse log: %v\n", err)
		return nil, 1
	}
	return log, 0
}

func loadValidator(schemaPath string, errOut io.Writer) (*schema.Validator, int) {
	text := schema.V1Schema{}.JSONSchema()
	if schemaPath != "" {
		b, err := os.ReadFile(schemaPath)
		if err != nil {
			fmt.Fprintf(errOut, "read schema: %v\n", err)
			return nil, 1
		}
		text = string(b)
	}
	validator, err := schema.Compile(text)
	if err != nil {
		fmt.Fprintf(errOut, "compile schema: %v\n", err)
		return nil, 1
	}
	return validator, 0
}
