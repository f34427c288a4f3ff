package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"lukechampine.com/flagg"

	"github.com/yyyoichi/stegmark"
	"github.com/yyyoichi/stegmark/mark"
	"github.com/yyyoichi/stegmark/splitter"
)

type engineFlags struct {
	secret      string
	transform   bool
	ecc         string
	parity      int
	size        int
	replacement bool
}

func (f *engineFlags) register(cmd *flag.FlagSet) {
	cmd.StringVar(&f.secret, "secret", "", "shared secret that selects the embedding positions")
	cmd.BoolVar(&f.transform, "transform", false, "embed in DCT/SVD coefficients instead of pixel bits")
	cmd.StringVar(&f.ecc, "ecc", "hamming", "block code: hamming, golay or none")
	cmd.IntVar(&f.parity, "parity", mark.DefaultParity, "Reed-Solomon parity symbols per codeword")
	cmd.IntVar(&f.size, "size", mark.DefaultSize, "payload length in bytes")
	cmd.BoolVar(&f.replacement, "replacement", false, "draw positions with replacement")
}

func (f *engineFlags) engine() (*stegmark.Engine, error) {
	var markOpts []mark.Option
	switch f.ecc {
	case "hamming":
		markOpts = append(markOpts, mark.WithHamming(), mark.WithParity(f.parity))
	case "golay":
		markOpts = append(markOpts, mark.WithGolay(), mark.WithParity(f.parity))
	case "none":
		markOpts = append(markOpts, mark.WithoutECC())
	default:
		return nil, fmt.Errorf("unknown block code %q", f.ecc)
	}
	opts := []stegmark.Option{
		stegmark.WithPayloadLength(f.size),
		stegmark.WithMarkOptions(markOpts...),
	}
	if f.transform {
		opts = append(opts, stegmark.WithTransformDomain())
	}
	if f.replacement {
		opts = append(opts, stegmark.WithSampling(stegmark.Replacement))
	}
	return stegmark.New(f.secret, opts...)
}

func main() {
	log.SetFlags(0)

	flagg.Root.Usage = flagg.SimpleUsage(flagg.Root, `Usage: stegmark [command] [args]

Commands:
    stegmark embed [flags] in.img text out.img
    stegmark extract [flags] in.img
    stegmark combine a.img b.img out.img
    stegmark split [-seed n] in.img hi.png lo.png
`)
	cmdEmbed := flagg.New("embed", `Usage:
    stegmark embed [flags] in.img text out.img
      Hide text in in.img and write the result to out.img
`)
	cmdExtract := flagg.New("extract", `Usage:
    stegmark extract [flags] in.img
      Print the text hidden in in.img
`)
	cmdCombine := flagg.New("combine", `Usage:
    stegmark combine a.img b.img out.img
      Pack the high nibbles of a.img and b.img into out.img
`)
	cmdSplit := flagg.New("split", `Usage:
    stegmark split [-seed n] in.img hi.png lo.png
      Separate an image made by combine into two approximations
`)
	var embedFlags, extractFlags engineFlags
	embedFlags.register(cmdEmbed)
	extractFlags.register(cmdExtract)
	seed := cmdSplit.Int64("seed", 1, "seed for the filled-in low bits")

	cmd := flagg.Parse(flagg.Tree{
		Cmd: flagg.Root,
		Sub: []flagg.Tree{
			{Cmd: cmdEmbed},
			{Cmd: cmdExtract},
			{Cmd: cmdCombine},
			{Cmd: cmdSplit},
		},
	})

	ctx := context.Background()
	switch cmd {
	case cmdEmbed:
		if cmd.NArg() != 3 {
			cmdEmbed.Usage()
			return
		}
		e, err := embedFlags.engine()
		if err != nil {
			log.Fatalln("invalid flags:", err)
		}
		img, err := loadImage(cmd.Arg(0))
		if err != nil {
			log.Fatalln("could not load image:", err)
		}
		marked, err := e.Encode(ctx, img, cmd.Arg(1))
		if err != nil {
			log.Fatalln("could not embed text:", err)
		}
		if err := saveImage(cmd.Arg(2), marked); err != nil {
			log.Fatalln("could not write output file:", err)
		}

	case cmdExtract:
		if cmd.NArg() != 1 {
			cmdExtract.Usage()
			return
		}
		e, err := extractFlags.engine()
		if err != nil {
			log.Fatalln("invalid flags:", err)
		}
		img, err := loadImage(cmd.Arg(0))
		if err != nil {
			log.Fatalln("could not load image:", err)
		}
		res, err := e.Decode(ctx, img)
		if errors.Is(err, stegmark.ErrUncorrectable) {
			log.Println("warning: payload is damaged beyond repair, output is a best guess")
		} else if err != nil {
			log.Fatalln("could not extract text:", err)
		}
		if res.CorrectedBits() > 0 || res.SymbolCorrections > 0 {
			log.Printf("corrected %d bits and %d symbols", res.CorrectedBits(), res.SymbolCorrections)
		}
		fmt.Println(strings.TrimRight(res.Text, " "))

	case cmdCombine:
		if cmd.NArg() != 3 {
			cmdCombine.Usage()
			return
		}
		a, err := loadImage(cmd.Arg(0))
		if err != nil {
			log.Fatalln("could not load image:", err)
		}
		b, err := loadImage(cmd.Arg(1))
		if err != nil {
			log.Fatalln("could not load image:", err)
		}
		out, err := splitter.Combine(a, b)
		if err != nil {
			log.Fatalln("could not combine images:", err)
		}
		if err := saveImage(cmd.Arg(2), out); err != nil {
			log.Fatalln("could not write output file:", err)
		}

	case cmdSplit:
		if cmd.NArg() != 3 {
			cmdSplit.Usage()
			return
		}
		img, err := loadImage(cmd.Arg(0))
		if err != nil {
			log.Fatalln("could not load image:", err)
		}
		hi, lo := splitter.SplitApprox(img, *seed)
		if err := saveImage(cmd.Arg(1), hi); err != nil {
			log.Fatalln("could not write output file:", err)
		}
		if err := saveImage(cmd.Arg(2), lo); err != nil {
			log.Fatalln("could not write output file:", err)
		}

	default:
		flagg.Root.Usage()
		os.Exit(2)
	}
}
