// Package config provides configuration parsing for Glyph projects.
//
// The configuration is stored in glyph.json at the project root. A missing
// file is not an error; every field has a default.
//
// # Configuration File Structure
//
//	{
//	  "name": "my-app",
//	  "components": "components",
//	  "dev": {
//	    "port": 4800,
//	    "host": "localhost",
//	    "liveReload": true
//	  },
//	  "build": {
//	    "output": "dist",
//	    "cache": ".glyph-cache",
//	    "parallelism": 4
//	  },
//	  "deploy": {
//	    "bucket": "my-bucket",
//	    "region": "us-east-1",
//	    "prefix": "app/"
//	  }
//	}
package config
