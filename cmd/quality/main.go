package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"time"

	"github.com/yyyoichi/stegmark"
	"github.com/yyyoichi/stegmark/mark"
)

const testText = "QUALITY-CHECK 0123456789"

type testCase struct {
	name string
	opts []stegmark.Option
}

type result struct {
	image            string
	width, height    int
	strategy, codec  string
	jpegQuality      int
	ok, reliable     bool
	correctedBits    int
	correctedSymbols int
	accuracy         float64
	duration         time.Duration
	err              error
}

func main() {
	numImages := flag.Int("n", 10, "number of images to test")
	urlsFile := flag.String("urls", "", "file with one image URL per line; synthetic images when empty")
	cacheDir := flag.String("cache", "/tmp/stegmark_http_cache/", "HTTP cache directory")
	dbPath := flag.String("db", "", "SQLite file to record results in")
	quality := flag.Int("jpeg", 0, "recompress marked images as JPEG with this quality (0 keeps them lossless)")
	secret := flag.String("secret", "quality", "secret used for every test")
	flag.Parse()

	ctx := context.Background()

	imageSizes := [][]int{
		{1920, 1080}, // FHD
		{1280, 720},  // HD
		{854, 480},   // 480p
		{640, 360},   // 360p
		{426, 240},   // 240p
	}
	strategies := []testCase{
		{"pixel", []stegmark.Option{stegmark.WithPixelDomain()}},
		{"pixel-replacement", []stegmark.Option{stegmark.WithSampling(stegmark.Replacement)}},
		{"transform-8x8", []stegmark.Option{stegmark.WithTransformDomain(), stegmark.WithBlockShape(8, 8), stegmark.WithD1D2(36, 20)}},
		{"transform-6x6", []stegmark.Option{stegmark.WithTransformDomain(), stegmark.WithBlockShape(6, 6), stegmark.WithD1D2(25, 14)}},
	}
	codecs := []testCase{
		{"hamming", []stegmark.Option{stegmark.WithMarkOptions(mark.WithHamming())}},
		{"golay", []stegmark.Option{stegmark.WithMarkOptions(mark.WithGolay())}},
		{"none", []stegmark.Option{stegmark.WithMarkOptions(mark.WithoutECC())}},
	}

	var st *store
	if *dbPath != "" {
		var err error
		st, err = openStore(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer st.Close()
	}

	var sources []string
	if *urlsFile != "" {
		urls, err := readURLs(*urlsFile)
		if err != nil {
			log.Fatalf("Failed to read URLs: %v", err)
		}
		if len(urls) == 0 {
			log.Fatal("No image URLs found")
		}
		sources = urls
	} else {
		for i := range max(*numImages, 1) {
			sources = append(sources, fmt.Sprintf("synthetic-%d", i))
		}
	}
	if *numImages > 0 && *numImages < len(sources) {
		sources = sources[:*numImages]
	}
	client := newClient(*cacheDir)

	log.Printf("Starting quality evaluation with %d images\n", len(sources))
	log.Printf("Total test cases per image: %d (image sizes) x %d (strategies) x %d (codecs) = %d\n",
		len(imageSizes), len(strategies), len(codecs), len(imageSizes)*len(strategies)*len(codecs))

	successCount, totalTests := 0, 0
	for i, src := range sources {
		log.Printf("\n[%d/%d] Testing image: %s\n", i+1, len(sources), src)
		for _, size := range imageSizes {
			width, height := size[0], size[1]
			var img image.Image
			if *urlsFile != "" {
				var err error
				img, err = fetchImage(client, src, width, height)
				if err != nil {
					log.Printf("    Error fetching image: %v\n", err)
					continue
				}
			} else {
				img = syntheticImage(width, height, i)
			}

			for _, s := range strategies {
				for _, c := range codecs {
					opts := append(append([]stegmark.Option{}, s.opts...), c.opts...)
					r := runCase(ctx, img, *secret, *quality, opts)
					r.image, r.width, r.height = src, width, height
					r.strategy, r.codec = s.name, c.name

					totalTests++
					if r.ok {
						successCount++
					}
					logResult(r)
					if st != nil {
						if err := st.insert(r); err != nil {
							log.Printf("    Error storing result: %v\n", err)
						}
					}
				}
			}
		}
	}

	log.Printf("\n=== Results ===\n")
	log.Printf("Total tests: %d\n", totalTests)
	if totalTests == 0 {
		return
	}
	log.Printf("Successful: %d (%.2f%%)\n", successCount, float64(successCount)/float64(totalTests)*100)
	log.Printf("Failed: %d (%.2f%%)\n", totalTests-successCount, float64(totalTests-successCount)/float64(totalTests)*100)
}

func runCase(ctx context.Context, img image.Image, secret string, quality int, opts []stegmark.Option) (r result) {
	r.jpegQuality = quality
	start := time.Now()
	defer func() { r.duration = time.Since(start) }()

	e, err := stegmark.New(secret, opts...)
	if err != nil {
		r.err = err
		return r
	}
	marked, err := e.Encode(ctx, img, testText)
	if err != nil {
		r.err = fmt.Errorf("embed: %w", err)
		return r
	}
	if quality > 0 {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, marked, &jpeg.Options{Quality: quality}); err != nil {
			r.err = fmt.Errorf("jpeg encode: %w", err)
			return r
		}
		if marked, err = jpeg.Decode(&buf); err != nil {
			r.err = fmt.Errorf("jpeg decode: %w", err)
			return r
		}
	}

	res, err := e.Decode(ctx, marked)
	if err != nil && !errors.Is(err, stegmark.ErrUncorrectable) {
		r.err = fmt.Errorf("extract: %w", err)
		return r
	}
	r.err = err
	want := e.Codec().Size()
	matches := 0
	for i := range want {
		expected := byte(' ')
		if i < len(testText) {
			expected = testText[i]
		}
		if i < len(res.Bytes) && res.Bytes[i] == expected {
			matches++
		}
	}
	r.accuracy = float64(matches) / float64(want) * 100
	r.reliable = res.Reliable
	r.correctedBits = res.CorrectedBits()
	r.correctedSymbols = res.SymbolCorrections
	r.ok = r.accuracy == 100
	return r
}

func logResult(r result) {
	status := "[OK]"
	if !r.ok {
		status = "[FAIL]"
	}
	if r.err != nil && r.accuracy == 0 {
		log.Printf("    %s Size=%dx%d Strategy=%s Codec=%s - %v\n",
			status, r.width, r.height, r.strategy, r.codec, r.err)
		return
	}
	log.Printf("    %s Size=%dx%d Strategy=%s Codec=%s - Accuracy=%.1f%% Bits=%d Symbols=%d Reliable=%t Time=%v\n",
		status, r.width, r.height, r.strategy, r.codec, r.accuracy, r.correctedBits, r.correctedSymbols, r.reliable, r.duration)
}
