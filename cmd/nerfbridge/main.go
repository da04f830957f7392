// Command nerfbridge runs one side of a radio-tunnel link: it pumps
// datagrams between a TUN device and a peer endpoint using the
// stop-and-wait request/response transport in package transport.
// Grounded on easymesh's gateway/main.go and transfer/main.go for the
// flag-driven config / init / run / WaitSignal shape.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/astaxie/beego/logs"

	"github.com/nerfbridge/nerfbridge/link"
	"github.com/nerfbridge/nerfbridge/link/udplink"
	"github.com/nerfbridge/nerfbridge/transport"
	"github.com/nerfbridge/nerfbridge/tunio"
	"github.com/nerfbridge/nerfbridge/util"
	"github.com/nerfbridge/nerfbridge/util/ip"
)

var (
	role          = flag.String("role", "", "endpoint role: primary or secondary")
	linkKind      = flag.String("link", "udp", "link backend: udp (mock is wired only in tests)")
	bindAddr      = flag.String("bind-addr", "", "local host:port for the udp link")
	peerAddr      = flag.String("peer-addr", "", "peer host:port for the udp link")
	primaryAddr   = flag.Uint("primary-addr", 1, "primary endpoint address")
	secondaryAddr = flag.Uint("secondary-addr", 2, "secondary endpoint address")
	cePin         = flag.Uint("ce-pin", 0, "radio chip-enable GPIO pin (opaque to the core)")
	rfDelayUs     = flag.Uint64("rf-delay-us", 200000, "primary's per-request receive timeout, in microseconds")
	beaconMs      = flag.Uint("beacon-interval-ms", 1000, "primary beacon interval, in milliseconds")
	maxPayload    = flag.Uint("max-payload-size", 32, "link frame size ceiling in bytes")

	tunAddr = flag.String("tun-addr", "", "local point-to-point address to assign the tun device, e.g. 10.0.0.1")
	tunMask = flag.Uint("tun-prefix-len", 24, "tun device address prefix length")
	tunMTU  = flag.Int("tun-mtu", 1400, "tun device MTU")
	tunFD   = flag.Int("tunnel-fd", -1, "use an already-open tun file descriptor instead of creating one")

	logDir   = flag.String("log-dir", "./log", "log directory")
	debugLog = flag.Bool("debug", false, "log to console instead of file")

	doPing    = flag.Bool("ping", false, "primary-only: send a single diagnostic ping and exit")
	pingValue = flag.Int64("ping-value", -1, "value to carry in the -ping probe; if negative, a random value is generated")
)

func main() {
	flag.Parse()
	util.LogInit(*logDir, *debugLog, "nerfbridge.log")
	logs.Info("nerfbridge %s starting, role=%s", util.VersionGet(), *role)

	l, err := openLink()
	if err != nil {
		logs.Error("failed to open link: %s", err.Error())
		os.Exit(1)
	}

	dev, err := openTun()
	if err != nil {
		logs.Error("failed to open tunnel device: %s", err.Error())
		os.Exit(1)
	}

	cfg := transport.Config{
		CePin:         uint16(*cePin),
		PrimaryAddr:   uint32(*primaryAddr),
		SecondaryAddr: uint32(*secondaryAddr),
		RFDelayUs:     *rfDelayUs,
	}
	ep := transport.NewEndpoint(cfg, l, dev)
	go ep.RunTunnelReader()

	ctx, cancel := context.WithCancel(context.Background())

	switch *role {
	case "primary":
		runPrimary(ctx, ep)
	case "secondary":
		logs.Info("running as secondary")
		secondary := transport.NewSecondary(ep)
		go secondary.Run(ctx)
	default:
		logs.Error("unknown -role %q, must be primary or secondary", *role)
		os.Exit(1)
	}

	util.WaitSignal(func(sig os.Signal) {
		logs.Info("shutting down on signal %s", sig.String())
		cancel()
		dev.Close()
	})
}

func runPrimary(ctx context.Context, ep *transport.Endpoint) {
	primary := transport.NewPrimary(ep, time.Duration(*beaconMs)*time.Millisecond)
	go primary.Run(ctx)

	if *doPing {
		value := uint32(*pingValue)
		if *pingValue < 0 {
			value = util.RandomUint32()
		}
		result := primary.Ping(value, true)
		fmt.Println(result.String())
		if result != transport.ResultSuccess {
			os.Exit(1)
		}
		os.Exit(0)
	}
}

func openLink() (link.Link, error) {
	switch *linkKind {
	case "udp":
		if *bindAddr == "" || *peerAddr == "" {
			return nil, fmt.Errorf("-bind-addr and -peer-addr are required for -link=udp")
		}
		u, err := udplink.Open(*bindAddr, *peerAddr, uint32(*maxPayload), time.Duration(*rfDelayUs)*time.Microsecond)
		if err != nil {
			return nil, err
		}
		return u, nil
	default:
		return nil, fmt.Errorf("unknown -link %q", *linkKind)
	}
}

func openTun() (tunio.Device, error) {
	if *tunFD >= 0 {
		return tunio.FromFD(int32(*tunFD)), nil
	}
	if *tunAddr == "" {
		return nil, fmt.Errorf("one of -tunnel-fd or -tun-addr is required")
	}
	addr, err := ip.ParseIP4(*tunAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid -tun-addr %q: %w", *tunAddr, err)
	}
	dev, ifname, err := tunio.OpenLinux(addr, *tunMask, *tunMTU)
	if err != nil {
		return nil, err
	}
	logs.Info("opened tunnel device %s", ifname)
	return dev, nil
}
