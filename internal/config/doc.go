// Package config provides configuration parsing for the webcast command.
//
// The configuration is stored in webcast.json. This package handles
// loading, saving, and validating it, and turns it into a session.Config.
//
// # Configuration File Structure
//
//	{
//	  "url": "wss://push.example.com/webcast/im/push/v2/",
//	  "clientParams": {
//	    "aid": "6383",
//	    "version_code": "180800"
//	  },
//	  "params": {
//	    "room_id": "7312"
//	  },
//	  "headers": {
//	    "User-Agent": "Mozilla/5.0"
//	  },
//	  "cookieFile": "./cookie.txt",
//	  "metrics": {
//	    "addr": ":9090"
//	  },
//	  "archive": {
//	    "bucket": "webcast-payloads",
//	    "region": "us-east-1"
//	  },
//	  "log": {
//	    "level": "info"
//	  }
//	}
//
// There is no keepalive setting: the server expects one every 10 seconds.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
//	sc, err := cfg.SessionConfig()
package config
