// Command squishtool converts between ordinary image files and DDS textures
// compressed with the BCn block codec.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"strings"

	"github.com/PIlin/squish-ccr/squish"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

func main() {
	var (
		inPath   string
		outPath  string
		format   string
		quality  string
		metric   string
		cutoff   int
		byAlpha  bool
		encode   bool
		decode   bool
		dumpInfo bool
	)
	flag.StringVar(&inPath, "in", "", "input file")
	flag.StringVar(&outPath, "out", "", "output file")
	flag.StringVar(&format, "format", "bc1", "block format: bc1|bc2|bc3|bc4|bc5|bc7")
	flag.StringVar(&quality, "quality", "normal", "encode quality: fast|normal|highest")
	flag.StringVar(&metric, "metric", "perceptual", "error metric: uniform|perceptual")
	flag.IntVar(&cutoff, "alpha-cutoff", 0, "bc1 binary transparency cutoff (0 disables)")
	flag.BoolVar(&byAlpha, "weight-by-alpha", false, "scale pixel weights by alpha")
	flag.BoolVar(&encode, "encode", false, "encode input image -> .dds")
	flag.BoolVar(&decode, "decode", false, "decode input .dds -> .png")
	flag.BoolVar(&dumpInfo, "info", false, "print .dds header info and exit")
	flag.Parse()

	if inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: squishtool -in <input> [-out <output>] [-encode|-decode] [-format bc1]")
		os.Exit(2)
	}

	inData, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if dumpInfo {
		h, _, err := squish.ParseContainer(inData)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(h.String())
		return
	}

	if encode == decode {
		fmt.Fprintln(os.Stderr, "specify exactly one of -encode or -decode")
		os.Exit(2)
	}
	if outPath == "" {
		fmt.Fprintln(os.Stderr, "missing -out")
		os.Exit(2)
	}

	if encode {
		if err := runEncode(inData, outPath, format, quality, metric, cutoff, byAlpha); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := runDecode(inData, outPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseFormat(s string) (squish.Format, error) {
	switch strings.ToLower(s) {
	case "bc1", "dxt1":
		return squish.BC1, nil
	case "bc2", "dxt3":
		return squish.BC2, nil
	case "bc3", "dxt5":
		return squish.BC3, nil
	case "bc4", "ati1":
		return squish.BC4, nil
	case "bc5", "ati2":
		return squish.BC5, nil
	case "bc7", "bptc":
		return squish.BC7, nil
	default:
		return 0, fmt.Errorf("squishtool: unknown format %q", s)
	}
}

func parseFlags(quality, metric string, cutoff int, byAlpha bool) (squish.Flags, error) {
	var flags squish.Flags

	switch strings.ToLower(quality) {
	case "fast":
		flags.Quality = squish.QualityFast
	case "normal":
		flags.Quality = squish.QualityNormal
	case "highest":
		flags.Quality = squish.QualityHighest
	default:
		return flags, fmt.Errorf("squishtool: unknown quality %q", quality)
	}

	switch strings.ToLower(metric) {
	case "uniform":
		flags.Metric = squish.MetricUniform
	case "perceptual":
		flags.Metric = squish.MetricPerceptual
	default:
		return flags, fmt.Errorf("squishtool: unknown metric %q", metric)
	}

	if cutoff < 0 || cutoff > 255 {
		return flags, fmt.Errorf("squishtool: alpha cutoff %d out of range", cutoff)
	}
	flags.AlphaCutoff = uint8(cutoff)
	flags.WeightByAlpha = byAlpha
	return flags, nil
}

func runEncode(inData []byte, outPath, format, quality, metric string, cutoff int, byAlpha bool) error {
	f, err := parseFormat(format)
	if err != nil {
		return err
	}
	flags, err := parseFlags(quality, metric, cutoff, byAlpha)
	if err != nil {
		return err
	}

	img, _, err := image.Decode(bytes.NewReader(inData))
	if err != nil {
		return err
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	blocks, err := squish.CompressImage(rgba.Pix, rgba.Rect.Dx(), rgba.Rect.Dy(), f, flags)
	if err != nil {
		return err
	}

	out, err := squish.MarshalContainer(squish.ContainerHeader{
		Width:  rgba.Rect.Dx(),
		Height: rgba.Rect.Dy(),
		Format: f,
	}, blocks)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, out, 0o644)
}

func runDecode(inData []byte, outPath string) error {
	h, blocks, err := squish.ParseContainer(inData)
	if err != nil {
		return err
	}

	pix, err := squish.DecompressImage(blocks, h.Width, h.Height, h.Format)
	if err != nil {
		return err
	}

	img := &image.RGBA{
		Pix:    pix,
		Stride: 4 * h.Width,
		Rect:   image.Rect(0, 0, h.Width, h.Height),
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return os.WriteFile(outPath, buf.Bytes(), 0o644)
}
