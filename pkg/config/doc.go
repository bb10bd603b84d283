/*
Package config loads the optional fsclip settings file.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   YAML   | |   JSON   | |   HCL    |
	|  Parser  | |  Parser  | |  Parser  |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Picks the clipboard store backend and its location
- Tunes the paste side (buffer size, ignore globs, progress bars)

🔄 Flow:
1. Use the --config path, or search <user config dir>/fsclip/fsclip.{yaml,yml,json,hcl}
2. Pick a parser by file extension
3. Validate and fill defaults
4. No file at all means Default()

🔍 Example:

	store:
	  backend: bolt
	transfer:
	  buffer_size: 65536
	  ignore:
	    - ".git"

or in HCL:

	store {
	  backend = "file"
	  path    = "${temp_dir}/my.clipboard"
	}
*/
package config
