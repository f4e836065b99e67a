// stdump decodes a captured SeaTalk or NMEA stream and prints one line per
// datagram, optionally followed by its NMEA translation.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/danmuck/seabridge/internal/device"
	"github.com/danmuck/seabridge/internal/gateway"
	"github.com/danmuck/seabridge/internal/observability"
	"github.com/danmuck/seabridge/internal/protocol/frame"
	"github.com/danmuck/seabridge/internal/protocol/nmea"
	"github.com/danmuck/seabridge/internal/protocol/seatalk"
	"github.com/danmuck/seabridge/internal/transport"
)

type options struct {
	input     string
	protocol  string
	checksum  string
	encoding  string
	translate bool
	talker    string
}

func main() {
	var opts options
	pflag.StringVarP(&opts.input, "input", "i", "", "capture file to decode")
	pflag.StringVarP(&opts.protocol, "protocol", "p", "seatalk", "stream protocol: seatalk|nmea")
	pflag.StringVar(&opts.checksum, "checksum", "none", "seatalk frame checksum: none|sum8|xor8")
	pflag.StringVar(&opts.encoding, "encoding", "", "IANA charset of an nmea capture")
	pflag.BoolVarP(&opts.translate, "translate", "t", false, "print NMEA sentences for seatalk datagrams")
	pflag.StringVar(&opts.talker, "talker", gateway.DefaultTalker, "talker id for translated sentences")
	pflag.Parse()

	observability.InitLogger("stdump")
	if opts.input == "" {
		fmt.Fprintln(os.Stderr, "stdump: --input is required")
		pflag.Usage()
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "stdump: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	t, err := transport.NewFile(transport.Config{Kind: transport.KindFile, Path: opts.input, Encoding: opts.encoding})
	if err != nil {
		return err
	}
	switch opts.protocol {
	case "seatalk":
		cs, err := frame.ParseChecksum(opts.checksum)
		if err != nil {
			return err
		}
		return dumpSeaTalk(ctx, opts, device.NewSeaTalkDevice("stdump", t, seatalk.NewCodec(seatalk.WithChecksum(cs))), out)
	case "nmea":
		return dumpNMEA(ctx, device.NewNMEADevice("stdump", t), out)
	default:
		return fmt.Errorf("unknown protocol %q", opts.protocol)
	}
}

func dumpSeaTalk(ctx context.Context, opts options, dev *device.Device[seatalk.Datagram], out io.Writer) error {
	if err := dev.Start(ctx); err != nil {
		return err
	}
	defer dev.Stop()

	var tr *gateway.Translator
	if opts.translate {
		tr = gateway.NewTranslator(opts.talker)
	}
	count := 0
	for {
		d, err := dev.Receive(ctx)
		if err != nil {
			break
		}
		count++
		fmt.Fprintf(out, "%-24s %+v\n", d.Command(), d)
		if tr == nil {
			continue
		}
		for _, s := range tr.Translate(d) {
			fmt.Fprintf(out, "  %s", s)
		}
	}
	log.Info().Int("datagrams", count).Msg("capture decoded")
	return ctx.Err()
}

func dumpNMEA(ctx context.Context, dev *device.Device[nmea.Sentence], out io.Writer) error {
	if err := dev.Start(ctx); err != nil {
		return err
	}
	defer dev.Stop()

	count := 0
	for {
		s, err := dev.Receive(ctx)
		if err != nil {
			break
		}
		count++
		known := "known"
		if !s.Known {
			known = "unknown"
		}
		fmt.Fprintf(out, "%s%s %-7s %q\n", s.Talker, s.Type, known, s.Fields)
	}
	log.Info().Int("sentences", count).Msg("capture decoded")
	return ctx.Err()
}
