//go:build !tinygo

// hostcheck is the host side of the echo integrity test. Flash examples/echo,
// set the tty to the board's line settings (stty), then run
//
//	hostcheck -n 65536 /dev/ttyUSB0
//
// It streams a deterministic pattern through the board and checks every byte
// that comes back.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tty "github.com/mattn/go-tty"
)

var (
	countFlag   = flag.Int("n", 64*1024, "bytes to send")
	chunkFlag   = flag.Int("c", 192, "bytes per write")
	timeoutFlag = flag.Duration("t", 20*time.Second, "overall timeout")
	radiusFlag  = flag.Int("r", 16, "context bytes shown around a mismatch")
	skipFlag    = flag.Bool("skip-banner", true, "discard input until the first pattern byte")
)

func pattern(i int) byte { return byte((i*31 + 0x55) & 0xFF) }

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [flags] <tty>\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
	}

	t, err := tty.OpenDevice(flag.Arg(0))
	if err != nil {
		log.Fatalf("open %s: %v", flag.Arg(0), err)
	}
	defer t.Close()
	restore := t.MustRaw()
	defer restore()

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	start := time.Now()
	errCh := make(chan error, 1)
	go func() { errCh <- check(ctx, t.Input(), *countFlag) }()

	if err := send(ctx, t.Output(), *countFlag, *chunkFlag); err != nil {
		log.Fatalf("send: %v", err)
	}

	select {
	case err = <-errCh:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		log.Fatalf("FAIL: %v", err)
	}
	el := time.Since(start)
	log.Printf("PASS: %d bytes in %v (%.1f kbit/s round trip)",
		*countFlag, el, float64(*countFlag*8)/el.Seconds()/1000)
}

func send(ctx context.Context, w io.Writer, n, chunk int) error {
	buf := make([]byte, chunk)
	for i := 0; i < n; {
		k := min(chunk, n-i)
		for j := 0; j < k; j++ {
			buf[j] = pattern(i + j)
		}
		if _, err := w.Write(buf[:k]); err != nil {
			return err
		}
		i += k
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

// check reads n pattern bytes from r. Reads are not interruptible, so the
// caller also selects on ctx.
func check(ctx context.Context, r io.Reader, n int) error {
	buf := make([]byte, 256)
	got := 0
	synced := !*skipFlag
	for got < n {
		m, err := r.Read(buf)
		if err != nil {
			return err
		}
		b := buf[:m]
		if !synced {
			i := 0
			for i < len(b) && b[i] != pattern(0) {
				i++
			}
			if i == len(b) {
				continue
			}
			b, synced = b[i:], true
		}
		for i, act := range b {
			if got+i >= n {
				break
			}
			if exp := pattern(got + i); act != exp {
				dump(got+i, b, i)
				return fmt.Errorf("mismatch at offset %d: got %#02x want %#02x", got+i, act, exp)
			}
		}
		got += len(b)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

func dump(off int, chunk []byte, rel int) {
	radius := *radiusFlag
	lo := max(0, rel-radius)
	hi := min(len(chunk), rel+radius+1)
	base := off - rel
	exp := make([]byte, hi-lo)
	for i := range exp {
		exp[i] = pattern(base + lo + i)
	}
	log.Printf("context at %d..%d", base+lo, base+hi-1)
	log.Printf(" exp: % x", exp)
	log.Printf(" act: % x", chunk[lo:hi])
}
