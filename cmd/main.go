// The domguard command runs a recording MITM proxy: HTML documents passing
// through it grow per-host DOM constraint trees, exported as HTML files on
// shutdown. The exported markup is suitable for a frame's DOMConstraintHTML.
package main

import (
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/AdguardTeam/golibs/log"
	"github.com/AdguardTeam/gomitmproxy"
	"github.com/AdguardTeam/gomitmproxy/mitm"
	goFlags "github.com/jessevdk/go-flags"

	"github.com/AdguardTeam/domguard/proxy"
)

// Options -- console arguments
type Options struct {
	// Verbose - should we write debug-level log
	Verbose bool `short:"v" long:"verbose" description:"Verbose output (optional)." optional:"yes" optional-value:"true"`

	// LogOutput - path to the log file
	LogOutput string `short:"o" long:"output" description:"Path to the log file. If not set, it writes to stderr." default:""`

	// ListenAddr - server listen address
	ListenAddr string `short:"l" long:"listen" description:"Listen address." default:"0.0.0.0"`

	// ListenPort - server listen port
	ListenPort int `short:"p" long:"port" description:"Listen port." default:"8080"`

	// TLSCertPath - path to the .crt with the root certificate, enables MITM for HTTPS
	TLSCertPath string `short:"c" long:"ca-cert" description:"Path to a file with the root certificate (optional, enables HTTPS recording)."`

	// TLSKeyPath - path to the file with the private key
	TLSKeyPath string `short:"k" long:"ca-key" description:"Path to a file with the CA private key."`

	// ExportDir - where to write the recorded constraint trees on exit
	ExportDir string `short:"e" long:"export" description:"Directory for the recorded constraint HTML files." default:"."`

	// ProxyUser - proxy auth username
	ProxyUser string `short:"u" long:"username" description:"Proxy auth username. If specified, proxy authorization is required."`

	// ProxyPassword - proxy password
	ProxyPassword string `short:"a" long:"password" description:"Proxy auth password. If specified, proxy authorization is required."`
}

func main() {
	var options Options
	var parser = goFlags.NewParser(&options, goFlags.Default)

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*goFlags.Error); ok && flagsErr.Type == goFlags.ErrHelp {
			os.Exit(0)
		} else {
			os.Exit(1)
		}
	}

	run(options)
}

func run(options Options) {
	if options.Verbose {
		log.SetLevel(log.DEBUG)
	}
	if options.LogOutput != "" {
		// nolint: gosec
		file, err := os.OpenFile(options.LogOutput, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("cannot create a log file: %s", err)
		}
		defer file.Close() //nolint
		log.SetOutput(file)
	}

	log.Printf("starting the recording proxy")

	config := createServerConfig(options)
	server, err := proxy.NewServer(config)
	if err != nil {
		log.Fatalf("failed to create the proxy server: %v", err)
	}

	err = server.Start()
	if err != nil {
		log.Fatalf("failed to start the proxy server: %v", err)
	}

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)
	<-signalChannel

	exportConstraints(server, options.ExportDir)
	server.Close()
}

func createServerConfig(options Options) proxy.Config {
	listenIP := net.ParseIP(options.ListenAddr)
	if listenIP == nil {
		log.Fatalf("cannot parse %s", options.ListenAddr)
	}

	var mitmConfig *mitm.Config
	if options.TLSCertPath != "" {
		mitmConfig = createMITMConfig(options)
	}

	addr := &net.TCPAddr{IP: listenIP, Port: options.ListenPort}
	config := proxy.Config{}
	config.ProxyConfig = gomitmproxy.Config{
		ListenAddr: addr,

		Username: options.ProxyUser,
		Password: options.ProxyPassword,

		MITMConfig: mitmConfig,
	}

	return config
}

func createMITMConfig(options Options) *mitm.Config {
	tlsCert, err := tls.LoadX509KeyPair(options.TLSCertPath, options.TLSKeyPath)
	if err != nil {
		log.Fatalf("failed to load root CA: %v", err)
	}
	privateKey := tlsCert.PrivateKey.(*rsa.PrivateKey)

	x509c, err := x509.ParseCertificate(tlsCert.Certificate[0])
	if err != nil {
		log.Fatalf("invalid certificate: %v", err)
	}

	mitmConfig, err := mitm.NewConfig(x509c, privateKey, nil)
	if err != nil {
		log.Fatalf("failed to create MITM config: %v", err)
	}

	mitmConfig.SetValidity(time.Hour * 24 * 7) // generate certs valid for 7 days
	mitmConfig.SetOrganization("DOMGuard")     // cert organization
	return mitmConfig
}

// exportConstraints writes one constraint HTML file per recorded host.
func exportConstraints(server *proxy.Server, dir string) {
	rec := server.Recorder()
	for _, host := range rec.Hosts() {
		markup, ok := rec.ConstraintHTML(host)
		if !ok {
			continue
		}

		path := filepath.Join(dir, host+".constraint.html")
		// nolint: gosec
		if err := os.WriteFile(path, []byte(markup), 0644); err != nil {
			log.Error("cannot write %s: %v", path, err)
			continue
		}
		log.Printf("exported %s", path)
	}
}
