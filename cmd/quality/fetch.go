package main

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "image/png"

	"github.com/yyyoichi/httpcache-go"
	"golang.org/x/image/draw"
)

// rateLimitedClient waits at least interval between two requests.
// Safe for concurrent use.
type rateLimitedClient struct {
	client   *http.Client
	interval time.Duration
	lastCall time.Time
	mu       sync.Mutex
}

func newRateLimitedClient(interval time.Duration) *rateLimitedClient {
	return &rateLimitedClient{
		client:   http.DefaultClient,
		interval: interval,
	}
}

func (r *rateLimitedClient) Do(req *http.Request) (*http.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if elapsed := time.Since(r.lastCall); elapsed < r.interval {
		time.Sleep(r.interval - elapsed)
	}

	log.Println("Making request to:", req.URL.String())
	resp, err := r.client.Do(req)
	r.lastCall = time.Now()
	return resp, err
}

// resizeClient strips the w and h query parameters, fetches the original
// image and answers with a center-cropped, resized PNG of that size.
type resizeClient struct {
	client httpcache.Client
}

func (r *resizeClient) Do(req *http.Request) (*http.Response, error) {
	u := *req.URL
	q := u.Query()
	u.RawQuery = ""
	req.URL = &u
	width, err := strconv.Atoi(q.Get("w"))
	if err != nil {
		return nil, err
	}
	height, err := strconv.Atoi(q.Get("h"))
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	src, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, cropRect(src.Bounds(), width, height), draw.Src, nil)

	// JPEG at full quality keeps the cache small; the marks are embedded after decoding.
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 100}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	resp.Body = io.NopCloser(&buf)
	return resp, nil
}

// cropRect returns the largest centered part of b with the aspect ratio of w x h.
func cropRect(b image.Rectangle, w, h int) image.Rectangle {
	srcRatio := float64(b.Dx()) / float64(b.Dy())
	targetRatio := float64(w) / float64(h)
	switch {
	case srcRatio > targetRatio:
		nw := int(float64(b.Dy()) * targetRatio)
		x := b.Min.X + (b.Dx()-nw)/2
		return image.Rect(x, b.Min.Y, x+nw, b.Max.Y)
	case srcRatio < targetRatio:
		nh := int(float64(b.Dx()) / targetRatio)
		y := b.Min.Y + (b.Dy()-nh)/2
		return image.Rect(b.Min.X, y, b.Max.X, y+nh)
	}
	return b
}

func newClient(cacheDir string) *httpcache.Client {
	original := httpcache.Client{
		Client:  newRateLimitedClient(250 * time.Millisecond),
		Cache:   httpcache.NewStorageCache(cacheDir),
		Handler: httpcache.NewDefaultHandler(),
	}
	return &httpcache.Client{
		Client:  &resizeClient{client: original},
		Cache:   httpcache.NewStorageCache(cacheDir),
		Handler: httpcache.NewDefaultHandler(),
	}
}

func fetchImage(client *httpcache.Client, url string, width, height int) (image.Image, error) {
	sizeParams := fmt.Sprintf("w=%d&h=%d", width, height)
	if strings.Contains(url, "?") {
		url += "&" + sizeParams
	} else {
		url += "?" + sizeParams
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %d", resp.StatusCode)
	}
	img, err := jpeg.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode jpeg: %w", err)
	}
	return img, nil
}

// readURLs returns the http(s) lines of the file at path.
func readURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && strings.HasPrefix(line, "http") {
			urls = append(urls, line)
		}
	}
	return urls, scanner.Err()
}

// syntheticImage draws a textured gradient, used when no URLs are given.
func syntheticImage(width, height, variant int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x*255)/width + variant*31),
				G: uint8((y*255)/height + variant*17),
				B: uint8(((x+y)*255)/(width+height) ^ (x * y * variant & 7)),
				A: 0xff,
			})
		}
	}
	return img
}
