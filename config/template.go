package config

// FileName is the config file the init command writes and the default
// search looks for.
const FileName = "ftpmirror.json"

// Template is the starter configuration written by the init command.
const Template = `{
  "host": "ftp.example.com",
  "port": 21,
  "user": "anonymous",
  "password": "",
  "remote_dir": "/",
  "local_dir": "./mirror",
  "timeout": 30,
  "explicit_tls": false,
  "compare": "auto",
  "interval": 300
}
`
