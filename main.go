package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ebfe/scard"
	"github.com/lmittmann/tint"

	"github.com/gregLibert/card-explorer/pkg/atr"
	"github.com/gregLibert/card-explorer/pkg/iso7816"
	"github.com/gregLibert/card-explorer/pkg/tlv"
)

// namedAID is one candidate application to probe for.
type namedAID struct {
	Name string
	AID  []byte
}

// Identity and travel-document applications commonly found on contactless
// smart cards.
var idApplications = []namedAID{
	{"eID (Belgian)", tlv.Hex("A0 00 00 01 77 50 4B 43 53 2D 31 35")},
	{"German eID", tlv.Hex("E8 28 BD 08 0F")},
	{"MRTD (Passport)", tlv.Hex("A0 00 00 02 47 10 01")},
	{"PIV (US Gov)", tlv.Hex("A0 00 00 03 08 00 00 10 00 01 00")},
	{"OpenPGP", tlv.Hex("D2 76 00 01 24 01")},
}

// Driving license applications from various countries and systems.
var dlApplications = []namedAID{
	{"EU Driving License", tlv.Hex("A0 00 00 00 77 01 08 00 07 00 00 FE 00 00 01 00")},
	{"German DL", tlv.Hex("A0 00 00 01 67 45 53 49 47 4E")},
	{"French DL", tlv.Hex("A0 00 00 00 77 01 08 00 07 00 00 FE 00 00 AD F2")},
	{"Italian DL", tlv.Hex("A0 00 00 00 30 80 00 00 00 06 01 03 01 01 01")},
	{"Nordic DL", tlv.Hex("A0 00 00 00 77 01 08 00 07 00 00 FE 00 00 AD F1")},
	{"Generic ISO7816", tlv.Hex("A0 00 00 00 77 01 08")},
	{"PKCS#15", tlv.Hex("A0 00 00 00 63 50 4B 43 53 2D 31 35")},
}

// Elementary files worth sweeping once an application (or the MF) is selected.
var commonFiles = []struct {
	ID   uint16
	Name string
}{
	{0x0001, "Card Holder Data"},
	{0x0002, "Driving License Data"},
	{0x0003, "Categories Data"},
	{0x0004, "Photo/Image Data"},
	{0x0005, "Signature Data"},
	{0x0010, "Personal Data"},
	{0x0011, "License Categories"},
	{0x0012, "Restrictions"},
	{0x0013, "Additional Info"},
	{0x2F00, "EF.DIR"},
	{0x2F01, "EF.ATR"},
	{0x5001, "Card Data"},
	{0x5002, "DL Categories"},
	{0x5003, "Personal Info"},
	{0xEF01, "Card Security"},
	{0xEF02, "License Info"},
}

// Data objects and records that some cards expose without any selection.
var directProbes = []struct {
	Cla  byte
	Tag  uint16
	Name string
}{
	{0x00, 0x9F7F, "Processing Options"},
	{0x80, 0x9F17, "PIN Try Counter"},
	{0x00, 0x008A, "Life Cycle Status"},
	{0x00, 0x005A, "Application PAN"},
	{0x00, 0x0050, "Application Label"},
	{0x80, 0x0056, "Track 1 Data"},
	{0x80, 0x0057, "Track 2 Data"},
}

type config struct {
	catalogPath  string
	readerHint   string
	maxLength    int
	longestMatch bool
	verbose      bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.catalogPath, "catalog", "", "path to an ATR catalog file (smartcard_list format)")
	flag.StringVar(&cfg.readerHint, "reader", "ACR122", "substring of the preferred reader name")
	flag.IntVar(&cfg.maxLength, "max-length", 512, "maximum bytes to read per file")
	flag.BoolVar(&cfg.longestMatch, "longest-match", false, "prefer the most specific ATR catalog entry over file order")
	flag.BoolVar(&cfg.verbose, "verbose", false, "log every APDU exchange")
	flag.Parse()

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})))

	if err := run(cfg); err != nil {
		slog.Error("scan aborted", "err", err)
		os.Exit(1)
	}
}

func run(cfg config) error {
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	ctx, card, err := connectToCard(cfg.readerHint)
	if err != nil {
		return err
	}
	defer func() {
		if err := card.Disconnect(scard.LeaveCard); err != nil {
			slog.Warn("failed to disconnect card", "err", err)
		}
		if err := ctx.Release(); err != nil {
			slog.Warn("failed to release context", "err", err)
		}
	}()

	if err := reportATR(card, catalog); err != nil {
		slog.Warn("ATR unavailable", "err", err)
	}

	client := iso7816.NewClient(card)
	cls, _ := iso7816.NewClass(0x00)

	found := probeApplications(client, card, cls, cfg.maxLength, idApplications, "Identity Applications")
	found += probeApplications(client, card, cls, cfg.maxLength, dlApplications, "Driving License Applications")

	probeDirectCommands(client)

	if found == 0 {
		scanMasterFile(client, card, cls, cfg.maxLength)
	}

	fmt.Println("\n=== Scan Complete ===")
	return nil
}

func loadCatalog(cfg config) (*atr.Catalog, error) {
	if cfg.catalogPath == "" {
		return nil, nil
	}

	f, err := os.Open(cfg.catalogPath)
	if err != nil {
		return nil, fmt.Errorf("opening ATR catalog: %w", err)
	}
	defer f.Close()

	catalog, err := atr.ParseCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("parsing ATR catalog: %w", err)
	}
	if cfg.longestMatch {
		catalog.Strategy = atr.LongestMatch
	}

	slog.Info("ATR catalog loaded", "entries", catalog.Len(), "path", cfg.catalogPath)
	return catalog, nil
}

// connectToCard establishes the PC/SC context and connects to the card in the
// preferred reader, falling back to the first one available.
func connectToCard(readerHint string) (*scard.Context, *scard.Card, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, nil, fmt.Errorf("establishing PC/SC context: %w", err)
	}

	readers, err := ctx.ListReaders()
	if err != nil || len(readers) == 0 {
		if relErr := ctx.Release(); relErr != nil {
			slog.Warn("failed to release context during error handling", "err", relErr)
		}
		return nil, nil, fmt.Errorf("no smart card reader found")
	}

	target := readers[0]
	for _, r := range readers {
		if readerHint != "" && strings.Contains(r, readerHint) {
			target = r
			break
		}
	}
	slog.Info("using reader", "name", target)

	// Force T=0 or T=1 to avoid "Parameter Incorrect" errors (Error 57)
	card, err := ctx.Connect(target, scard.ShareShared, scard.ProtocolT0|scard.ProtocolT1)
	if err != nil {
		if relErr := ctx.Release(); relErr != nil {
			slog.Warn("failed to release context during error handling", "err", relErr)
		}
		return nil, nil, fmt.Errorf("connecting to card: %w", err)
	}

	return ctx, card, nil
}

func reportATR(card *scard.Card, catalog *atr.Catalog) error {
	status, err := card.Status()
	if err != nil {
		return err
	}

	fmt.Println(atr.Decode(status.Atr, catalog).Describe())
	return nil
}

// probeApplications selects each candidate AID and, for the ones that answer,
// reports the FCI and sweeps the common elementary files. It returns the
// number of applications found.
func probeApplications(client *iso7816.Client, card iso7816.Transmitter, cls iso7816.Class, maxLength int, apps []namedAID, title string) int {
	fmt.Printf("\n=== Probing for %s ===\n", title)

	found := 0
	for _, app := range apps {
		slog.Debug("selecting application", "name", app.Name, "aid", fmt.Sprintf("%X", app.AID))

		trace, err := client.Send(iso7816.SelectByAID(cls, app.AID))
		if err != nil {
			slog.Warn("transmission failed", "aid", fmt.Sprintf("%X", app.AID), "err", err)
			continue
		}

		last := trace.Last()
		if !trace.IsSuccess() {
			fmt.Printf("  [-] %s: %s\n", app.Name, last.Response.Status)
			continue
		}

		found++
		fmt.Printf("  [+] %s found\n", app.Name)

		if fci, err := iso7816.ParseFCI(last.Response.Data); err == nil {
			fmt.Println(fci.Describe())
		} else if len(last.Response.Data) > 0 {
			fmt.Printf("    FCI (raw): %X\n", last.Response.Data)
		}

		sweepFiles(card, cls, maxLength)
	}

	return found
}

// sweepFiles reads every common file under the currently selected application
// and analyzes the content of the ones that exist.
func sweepFiles(card iso7816.Transmitter, cls iso7816.Class, maxLength int) {
	for _, file := range commonFiles {
		data, session, err := iso7816.ReadFile(card, cls, file.ID, maxLength)
		if err != nil {
			if session != nil {
				slog.Debug("file not readable", "id", fmt.Sprintf("%04X", file.ID), "name", file.Name, "status", session.LastStatus().String())
			} else {
				slog.Warn("file read setup failed", "id", fmt.Sprintf("%04X", file.ID), "err", err)
			}
			continue
		}
		if len(data) == 0 {
			continue
		}

		fmt.Printf("    File %04X (%s): %d bytes in %d read(s)\n", file.ID, file.Name, len(data), session.Reads())
		analyzeFileData(data)
	}
}

// analyzeFileData renders file content as a TLV structure when it parses as
// one, or as a hex-plus-ASCII preview otherwise.
func analyzeFileData(data []byte) {
	if entries := tlv.Parse(data); len(entries) > 0 {
		fmt.Print(entries.Describe())
		return
	}

	preview := data
	if len(preview) > 64 {
		preview = preview[:64]
	}
	fmt.Printf("    Raw: %X (%q)\n", preview, tlv.SafeASCII(preview))
}

// probeDirectCommands tries GET DATA objects and the first few records
// without selecting any application. Many cards expose something here even
// when every AID probe fails.
func probeDirectCommands(client *iso7816.Client) {
	fmt.Println("\n=== Trying Direct Commands ===")

	for _, probe := range directProbes {
		cls, err := iso7816.NewClass(probe.Cla)
		if err != nil {
			continue
		}

		trace, err := client.Send(iso7816.GetData(cls, probe.Tag))
		if err != nil {
			slog.Warn("transmission failed", "probe", probe.Name, "err", err)
			return
		}

		reportProbe(probe.Name, trace)
	}

	cls, _ := iso7816.NewClass(0x00)
	for rec := byte(1); rec <= 3; rec++ {
		trace, err := client.Send(iso7816.ReadRecord(cls, 0, rec))
		if err != nil {
			slog.Warn("transmission failed", "record", rec, "err", err)
			return
		}

		reportProbe(fmt.Sprintf("Record %d", rec), trace)
	}
}

func reportProbe(name string, trace iso7816.Trace) {
	resp := trace.Last().Response
	if !trace.IsSuccess() || len(resp.Data) == 0 {
		slog.Debug("direct probe empty", "probe", name, "status", resp.Status.String())
		return
	}
	fmt.Printf("  [+] %s: %X (%q)\n", name, resp.Data, tlv.SafeASCII(resp.Data))
}

// scanMasterFile is the fallback when no application answered: select the MF
// and sweep the common files from the root.
func scanMasterFile(client *iso7816.Client, card iso7816.Transmitter, cls iso7816.Class, maxLength int) {
	fmt.Println("\n=== No applications found, trying Master File ===")

	trace, err := client.Send(iso7816.SelectMF(cls))
	if err != nil {
		slog.Warn("transmission failed", "err", err)
		return
	}
	if !trace.IsSuccess() {
		fmt.Printf("  [-] Master File: %s\n", trace.Last().Response.Status)
		return
	}

	sweepFiles(card, cls, maxLength)
}
