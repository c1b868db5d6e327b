package main

import (
	"flag"
	"log"

	"github.com/wyndcliff/htaccessd/core/server"
)

func main() {
	devMode := flag.Bool("dev", false, "run in developer mode")
	docRoot := flag.String("docroot", "./pb_public", "document root .htaccess hierarchies are resolved under")
	cacheBuckets := flag.Int("cache-buckets", 64, "parse cache hash table size")
	flag.Parse()

	var srv *server.Server
	if *devMode {
		srv = server.New(server.InDeveloperMode(), server.WithDocumentRoot(*docRoot), server.WithCacheBuckets(*cacheBuckets))
		log.Println("htaccessd: developer mode enabled")
	} else {
		srv = server.New(server.WithDocumentRoot(*docRoot), server.WithCacheBuckets(*cacheBuckets))
		log.Println("htaccessd: production mode")
	}

	if err := srv.Start(); err != nil {
		srv.App().Logger().Error("fatal application error",
			"error", err,
			"total_requests", srv.Stats().TotalRequests.Load(),
			"total_blocked", srv.Stats().TotalBlocked.Load(),
		)
		log.Fatal(err)
	}
}
