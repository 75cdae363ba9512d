//go:build mk66f18

// On-target self-test for LPUART0 through the serial layer.
// Wire LPUART0 TX to RX before flashing. Flow control unused.
package main

import (
	"context"
	"crypto/sha1"
	"time"

	"github.com/jangala-dev/tinygo-lpuart/lpuart"
	"github.com/jangala-dev/tinygo-lpuart/serial"
)

const (
	baud       = 460800
	lineEnding = "\r\n"
)

var u = lpuart.LPUART0

func drain(p *serial.Port) {
	var tmp [64]byte
	for p.TryRead(tmp[:]) > 0 {
	}
}

// sendAllContext writes b using TryWrite+Writable with a context timeout.
func sendAllContext(ctx context.Context, p *serial.Port, b []byte) (int, error) {
	sent := 0
	for sent < len(b) {
		if n := p.TryWrite(b[sent:]); n > 0 {
			sent += n
			continue
		}
		select {
		case <-p.Writable():
		case <-ctx.Done():
			return sent, ctx.Err()
		}
	}
	return sent, nil
}

// recvExact reads exactly n bytes (or ctx error) using TryRead+Readable.
func recvExact(ctx context.Context, p *serial.Port, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	var buf [128]byte
	for len(out) < n {
		if k := p.TryRead(buf[:]); k > 0 {
			out = append(out, buf[:k]...)
			continue
		}
		select {
		case <-p.Readable():
		case <-ctx.Done():
			return out, ctx.Err()
		}
	}
	return out, nil
}

func echo(p *serial.Port, msg []byte) string {
	drain(p)
	if _, err := p.Write(msg); err != nil {
		return "write failed"
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := recvExact(ctx, p, len(msg))
	if err != nil {
		return "timeout"
	}
	if string(got) != string(msg) {
		return "mismatch"
	}
	return ""
}

func main() {
	// Give the monitor time to attach.
	time.Sleep(3 * time.Second)

	println("lpuart self-test starting")

	p := serial.NewPort(u, serial.PortConfig{RxSize: 512, TxSize: 256})
	if err := p.Open(); err != nil {
		println("Open failed:", err.Error())
		for {
			time.Sleep(time.Hour)
		}
	}
	if err := p.SetLineSettings(serial.LineSettings{Baud: baud, DataBits: 8, StopBits: 1}); err != nil {
		println("SetLineSettings failed:", err.Error())
	}

	pass, fail := 0, 0
	run := func(name string, f func() string) {
		println("")
		println("[Test]", name)
		if msg := f(); msg == "" {
			println("  PASS")
			pass++
		} else {
			println("  FAIL:", msg)
			fail++
		}
	}

	run("notify: initial Writable after Open", func() string {
		select {
		case <-p.Writable():
			return ""
		case <-time.After(750 * time.Millisecond):
			return "no initial Writable"
		}
	})

	run("sanity: short loopback", func() string {
		return echo(p, []byte("hello, lpuart"+lineEnding))
	})

	run("blocking: Read waits for a single byte", func() string {
		drain(p)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		go func() { _, _ = sendAllContext(ctx, p, []byte{'Z'}) }()
		var b [1]byte
		if _, err := p.Read(b[:]); err != nil {
			return "read error"
		}
		if b[0] != 'Z' {
			return "wrong byte"
		}
		return ""
	})

	run("timeout: no data within 200ms", func() string {
		drain(p)
		select {
		case <-p.Readable():
			return "unexpected data"
		case <-time.After(200 * time.Millisecond):
			return ""
		}
	})

	run("binary: 4 KiB integrity (SHA-1)", func() string {
		drain(p)
		n := 4 * 1024
		src := make([]byte, n)
		var x uint32 = 0x12345678
		for i := range src {
			x = 1664525*x + 1013904223
			src[i] = byte(x >> 24)
		}
		want := sha1.Sum(src)

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		go func() { _, _ = sendAllContext(ctx, p, src) }()
		got, err := recvExact(ctx, p, n)
		if err != nil || len(got) != n {
			return "timeout/short read"
		}
		if sha1.Sum(got) != want {
			return "hash mismatch"
		}
		return ""
	})

	run("line: even parity, two stop bits", func() string {
		want := serial.LineSettings{Baud: 115200, Parity: serial.ParityEven, DataBits: 8, StopBits: 2}
		if err := p.SetLineSettings(want); err != nil {
			return err.Error()
		}
		got, err := p.LineSettings()
		if err != nil || got != want {
			return "settings did not round-trip"
		}
		return echo(p, []byte("8E2"+lineEnding))
	})

	run("line: rejected request changes nothing", func() string {
		before, _ := p.LineSettings()
		if err := p.SetLineSettings(serial.LineSettings{Baud: 9600, DataBits: 7, StopBits: 1}); err == nil {
			return "7 data bits accepted"
		}
		after, _ := p.LineSettings()
		if after != before {
			return "settings changed"
		}
		return ""
	})

	run("break: pulse", func() string {
		if err := p.Flush(); err != nil {
			return "flush"
		}
		if err := p.Ioctl(serial.CmdBreakSet, nil); err != nil {
			return err.Error()
		}
		if err := p.Ioctl(serial.CmdBreakClear, nil); err != nil {
			return err.Error()
		}
		// The break arrives as a framing error and is discarded.
		time.Sleep(10 * time.Millisecond)
		if p.Stats().Framing == 0 {
			println("  note: no framing error seen for the break")
		}
		return echo(p, []byte("after-break"+lineEnding))
	})

	run("console: Putc with the port open", func() string {
		u.WriteString("lpuart console ok\n")
		time.Sleep(5 * time.Millisecond)
		drain(p)
		return echo(p, []byte("still-ok"+lineEnding))
	})

	run("close and reopen", func() string {
		if err := p.Close(); err != nil {
			return "close"
		}
		if _, err := p.Write([]byte("x")); err == nil {
			return "write after close succeeded"
		}
		if err := p.Open(); err != nil {
			return "reopen"
		}
		_ = p.SetLineSettings(serial.LineSettings{Baud: baud, DataBits: 8, StopBits: 1})
		return echo(p, []byte("reopened"+lineEnding))
	})

	s := p.Stats()
	println("")
	println("Stats: rx=", s.RxBytes, " tx=", s.TxBytes, " dropped=", s.Dropped,
		" OR=", s.Overrun, " FE=", s.Framing, " NF=", s.Noise, " PF=", s.Parity)
	println("Summary")
	println("  passed =", pass)
	println("  failed =", fail)
	for {
		time.Sleep(time.Hour)
	}
}
