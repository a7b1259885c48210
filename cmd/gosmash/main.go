// GoSmash — randomized audiovisual smash generator.
//
// Usage:
//
//	gosmash -o <file> --image a.png --audio b.wav --text "..." [options]
//	gosmash help
package main

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xob0t/GoSmash/pkg/audiomix"
	"github.com/xob0t/GoSmash/pkg/canvas"
	"github.com/xob0t/GoSmash/pkg/catalog"
	"github.com/xob0t/GoSmash/pkg/engine"
	"github.com/xob0t/GoSmash/pkg/export"
	"github.com/xob0t/GoSmash/pkg/ingest"
	"github.com/xob0t/GoSmash/pkg/quote"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "help", "-h", "--help":
			printUsage()
			return
		}
	}
	if err := run(os.Args[1:]); err != nil {
		fatal(err)
	}
}

// stringList is a repeatable flag value.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func run(args []string) error {
	fs := flag.NewFlagSet("gosmash", flag.ExitOnError)

	var (
		images    stringList
		audios    stringList
		texts     stringList
		textFiles stringList

		output     string
		configPath string
		fontPath   string

		imageLayers = fs.Int("images", 4, "Image layer count")
		textLayers  = fs.Int("texts", 3, "Text layer count")
		audioLayers = fs.Int("sounds", 8, "Audio layer count")

		alpha    = fs.String("alpha", "0.35,0.9", "Layer opacity range lo,hi")
		crop     = fs.String("crop", "0.2,0.8", "Image crop fraction range lo,hi")
		textSize = fs.String("text-size", "24,120", "Text size range in pixels lo,hi")
		rotation = fs.Float64("rotation", 0.6, "Max text rotation in radians")

		bpm           = fs.Float64("bpm", 120, "Beats per minute [40,200]")
		grid          = fs.Int("grid", 8, "Grid division [4,16]")
		phraseChance  = fs.Float64("phrase-chance", 0.25, "Phrase probability per audio layer")
		stutterChance = fs.Float64("stutter-chance", 0.35, "Stutter probability per grid chop")

		seed     = fs.Uint64("seed", 0, "Random seed (0 = random)")
		preview  = fs.Bool("preview", false, "Play the mix through the speakers")
		useQuote = fs.Bool("quote", false, "Fetch a random quote as an extra text input")
		quoteURL = fs.String("quote-url", "", "Quote endpoint override")
	)

	fs.Var(&images, "image", "Image input file (repeatable)")
	fs.Var(&audios, "audio", "Audio input file (repeatable)")
	fs.Var(&texts, "text", "Text input line (repeatable)")
	fs.Var(&textFiles, "text-file", "Text file, one input per line (repeatable)")
	fs.StringVar(&output, "o", "", "Output file path (.png or .avi)")
	fs.StringVar(&output, "output", "", "Output file path (.png or .avi)")
	fs.StringVar(&configPath, "config", "", "JSON config file (flags override it)")
	fs.StringVar(&fontPath, "font", "", "Custom TTF font path")

	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Config: file as base, explicitly set flags on top.
	cfg := engine.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = engine.ParseConfigFile(configPath)
		if err != nil {
			return err
		}
	}
	var ferr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "images":
			cfg.ImageLayers = *imageLayers
		case "texts":
			cfg.TextLayers = *textLayers
		case "sounds":
			cfg.AudioLayers = *audioLayers
		case "alpha":
			cfg.Alpha, ferr = parseRange(*alpha, ferr)
		case "crop":
			cfg.ImageCrop, ferr = parseRange(*crop, ferr)
		case "text-size":
			cfg.TextSize, ferr = parseRange(*textSize, ferr)
		case "rotation":
			cfg.Rotation = *rotation
		case "bpm":
			cfg.BPM = *bpm
		case "grid":
			cfg.GridDivision = *grid
		case "phrase-chance":
			cfg.PhraseChance = *phraseChance
		case "stutter-chance":
			cfg.StutterChance = *stutterChance
		}
	})
	if ferr != nil {
		return ferr
	}

	cat := catalog.New()
	if err := loadInputs(cat, images, audios, texts, textFiles); err != nil {
		return err
	}
	if *useQuote {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		q, err := quote.NewClient(*quoteURL).Random(ctx)
		cancel()
		if err != nil {
			log.Printf("quote fetch failed, continuing without it: %v", err)
		} else {
			cat.AddText(q.Text)
			log.Printf("quote: %q — %s", q.Text, q.Author)
		}
	}

	if *seed == 0 {
		var b [8]byte
		if _, err := cryptorand.Read(b[:]); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		*seed = binary.LittleEndian.Uint64(b[:])
	}

	surf, err := canvas.New(canvas.DefaultSide, fontPath)
	if err != nil {
		return err
	}

	res := engine.Compose(cat, cfg, engine.NewRand(*seed), surf)
	log.Printf("smash %s: %d slices, %.2fs timeline (seed %d)",
		res.Seed, len(res.Timeline.Slices), res.Timeline.TotalDuration(), *seed)

	if *preview && !res.Timeline.Empty() {
		if err := playPreview(res.Timeline, cat); err != nil {
			log.Printf("preview unavailable: %v", err)
		}
	}

	exp := export.NewExporter(export.Options{})
	art, err := exp.Export(surf, res.Timeline, cat, res.Seed)
	if err != nil {
		return err
	}

	if output == "" {
		output = art.Name
	}
	if err := os.WriteFile(output, art.Data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Printf("Done: %s (%d bytes, %s)\n", output, len(art.Data), art.MIME)
	return nil
}

func loadInputs(cat *catalog.Catalog, images, audios, texts, textFiles []string) error {
	for _, p := range images {
		img, err := ingest.LoadImage(p)
		if err != nil {
			return err
		}
		cat.AddImage(img)
	}
	for _, p := range audios {
		buf, err := ingest.LoadAudio(p)
		if err != nil {
			return err
		}
		cat.AddAudio(buf)
	}
	for _, t := range texts {
		cat.AddText(t)
	}
	for _, p := range textFiles {
		lines, err := ingest.LoadTextLines(p)
		if err != nil {
			return err
		}
		for _, line := range lines {
			cat.AddText(line)
		}
	}
	return nil
}

func playPreview(tl engine.Timeline, cat *catalog.Catalog) error {
	sink, err := audiomix.NewSpeakerSink()
	if err != nil {
		return err
	}
	p := audiomix.NewPreview(sink)
	total, err := p.Start(tl, cat)
	if err != nil {
		return err
	}
	log.Printf("previewing %.2fs mix...", total)
	time.Sleep(time.Duration((total+0.5)*float64(time.Second)))
	p.Stop()
	return nil
}

func parseRange(s string, prev error) (engine.Range, error) {
	if prev != nil {
		return engine.Range{}, prev
	}
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return engine.Range{}, fmt.Errorf("invalid range %q: expected lo,hi", s)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return engine.Range{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return engine.Range{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	return engine.Range{Low: lo, High: hi}, nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`GoSmash — Randomized Audiovisual Smash Generator

USAGE:
    gosmash [options]
    gosmash help

INPUTS (repeatable):
    --image <path>         Image input (.png, .jpg, .gif, .webp)
    --audio <path>         Audio input (.wav, .mp3, .flac, .ogg)
    --text <string>        Text input line
    --text-file <path>     Text file, one input per line
    --quote                Fetch a random quote as an extra text input
    --quote-url <url>      Quote endpoint override

COMPOSITION:
    --images <n>           Image layer count (default: 4)
    --texts <n>            Text layer count (default: 3)
    --sounds <n>           Audio layer count (default: 8)
    --alpha <lo,hi>        Layer opacity range (default: 0.35,0.9)
    --crop <lo,hi>         Image crop fraction range (default: 0.2,0.8)
    --text-size <lo,hi>    Text size range in pixels (default: 24,120)
    --rotation <rad>       Max text rotation (default: 0.6)
    --bpm <n>              Beats per minute, clamped to [40,200]
    --grid <n>             Grid division, clamped to [4,16]
    --phrase-chance <p>    Phrase probability per audio layer
    --stutter-chance <p>   Stutter probability per grid chop
    --config <path>        JSON config file (flags override it)
    --seed <n>             Random seed for a reproducible smash

OUTPUT:
    -o, --output <path>    Output file; default smash-<seed>.png or .avi
    --font <path>          Custom TTF font
    --preview              Play the mix through the speakers first

EXAMPLES:
    gosmash --image cat.png --text "hello world" -o smash.png
    gosmash --image cat.png --audio loop.wav --bpm 140 --grid 16 -o smash.avi
    gosmash --audio a.wav --audio b.mp3 --sounds 12 --stutter-chance 0.6 --preview
`)
}
