/*
NAME
  tabconv/main.go

DESCRIPTION
  This program compiles signaling table XML files into binary sections
  and decompiles binary sections back into XML. By default files ending
  in .xml are compiled and files ending in .bin are decompiled; the
  compile and decompile flags force a direction for other names.

  Specify the input file with the in flag, and the output file with the
  out flag. The japan flag selects the Japanese profile, under which
  TOT times are carried in JST.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package main

import (
	"bytes"
	"encoding/xml"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/dtv/tables"
	"github.com/ausocean/utils/logging"
)

// Current software version.
const version = "v1.0.0"

// Logging configuration.
const (
	logPath      = "/var/log/dtv/tabconv.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

// Consts describing flag usage.
const (
	inUsage        = "The path of the file to be converted"
	outUsage       = "Output file path (default: input path with swapped extension)"
	compileUsage   = "Compile XML to a binary section (default for .xml files)"
	decompileUsage = "Decompile a binary section to XML (default for .bin files)"
	japanUsage     = "Use the Japanese profile (TOT times carried as JST)"
)

// Various errors that we can encounter.
const (
	errBadInPath  = "no input file path provided, or file cannot be read"
	errBadMode    = "cannot infer conversion direction from file extension; pass compile or decompile"
	errBothModes  = "compile and decompile are mutually exclusive"
	errCantCreate = "cannot create output file"
)

func main() {
	var (
		inPath    = flag.String("in", "", inUsage)
		outPath   = flag.String("out", "", outUsage)
		compile   = flag.Bool("compile", false, compileUsage)
		decompile = flag.Bool("decompile", false, decompileUsage)
		japan     = flag.Bool("japan", false, japanUsage)
		showVer   = flag.Bool("version", false, "show version")
	)
	flag.Parse()
	if *showVer {
		fmt.Println(version)
		os.Exit(0)
	}

	// Create lumberjack logger to handle logging to file.
	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)

	in, err := os.ReadFile(*inPath)
	if err != nil {
		log.Fatal(errBadInPath, "path", *inPath, "error", err.Error())
	}

	if *compile && *decompile {
		log.Fatal(errBothModes)
	}
	toBin := *compile
	if !*compile && !*decompile {
		switch strings.ToLower(filepath.Ext(*inPath)) {
		case ".xml":
			toBin = true
		case ".bin":
			toBin = false
		default:
			log.Fatal(errBadMode, "path", *inPath)
		}
	}

	std := tables.MPEG | tables.DVB | tables.ATSC
	if *japan {
		std |= tables.ISDB | tables.Japan
	}

	var (
		out  []byte
		name string
	)
	if toBin {
		out, name, err = compileXML(in, std)
	} else {
		out, name, err = decompileBin(in, std)
	}
	if err != nil {
		log.Fatal("conversion failed", "path", *inPath, "error", err.Error())
	}

	dst := *outPath
	if dst == "" {
		ext := ".xml"
		if toBin {
			ext = ".bin"
		}
		dst = strings.TrimSuffix(*inPath, filepath.Ext(*inPath)) + ext
	}
	err = os.WriteFile(dst, out, 0644)
	if err != nil {
		log.Fatal(errCantCreate, "path", dst, "error", err.Error())
	}
	log.Info("converted table file", "in", *inPath, "out", dst, "table", name)
}

// compileXML converts one table in XML form to a binary section,
// returning the section and the table's element name.
func compileXML(in []byte, std tables.Standards) ([]byte, string, error) {
	dec := xml.NewDecoder(bytes.NewReader(in))
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, "", fmt.Errorf("could not find table element: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		t, ok := tables.NewByXMLName(start.Name.Local)
		if !ok {
			return nil, "", fmt.Errorf("unknown table element <%s>", start.Name.Local)
		}
		err = dec.DecodeElement(t, &start)
		if err != nil {
			return nil, "", fmt.Errorf("could not parse <%s>: %w", start.Name.Local, err)
		}
		b, err := tables.EncodeSection(t, std)
		return b, start.Name.Local, err
	}
}

// decompileBin converts one binary section to indented XML, returning
// the XML and the table's element name.
func decompileBin(in []byte, std tables.Standards) ([]byte, string, error) {
	t, err := tables.DecodeSection(in, std)
	if err != nil {
		return nil, "", err
	}
	name, _ := tables.XMLNameByID(t.TableID())
	body, err := xml.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, "", err
	}
	return append([]byte(xml.Header), append(body, '\n')...), name, nil
}
