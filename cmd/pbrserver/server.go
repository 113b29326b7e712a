package main

import (
	"flag"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	pbr "github.com/Rendszerguru/Arma-Legacy2PBR"
	"github.com/Rendszerguru/Arma-Legacy2PBR/service"
	"github.com/gorilla/websocket"
	"github.com/kpango/glg"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/pkg/errors"
)

var (
	addr      = flag.String("addr", ":9999", "set the address to listen on")
	inputDir  = flag.String("dir", pbr.DefaultInputDir, "set the default input directory")
	resultDir = flag.String("out", pbr.DefaultResultDir, "set the directory the outputs are moved to (empty to keep them next to the inputs)")
	formats   = flag.String("formats", "tga,tif,png", "set the comma separated output formats (tga, tif, png)")
	table     = flag.String("table", pbr.Baseline.Name, "set the channel mapping table (baseline, averaged)")
	strict    = flag.Bool("strict", false, "abort a batch when a texture set fails")
	robust    = flag.Bool("robust", true, "keep writing the remaining formats when saving one fails")
)

var (
	upgrader = websocket.Upgrader{
		HandshakeTimeout: 5 * time.Second,
	}
)

func newServer(mgr *service.Manager) *echo.Echo {
	e := echo.New()

	e.Use(middleware.Logger())

	api := e.Group("/api")

	api.GET("/client", func(c echo.Context) error {
		ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}

		mgr.HandleConn(ws)

		return nil
	})

	api.POST("/convert", func(c echo.Context) error {
		data, err := ioutil.ReadAll(c.Request().Body)
		if err != nil {
			return err
		}

		dir := strings.TrimSpace(string(data))

		glg.Infof("pbr server: converting directory: %q", dir)

		summary, err := mgr.Convert(dir)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, summary)
		}

		return c.JSON(http.StatusOK, summary)
	})

	api.GET("/report", func(c echo.Context) error {
		summary, ok := mgr.LastSummary()
		if !ok {
			return echo.NewHTTPError(http.StatusNotFound, "no conversion has run yet")
		}

		return c.JSON(http.StatusOK, summary)
	})

	return e
}

// conversionOptions builds the batch options from the command line flags.
func conversionOptions() (pbr.Options, error) {
	outputFormats, err := pbr.ParseFormats(*formats)
	if err != nil {
		return pbr.Options{}, errors.Wrap(err, "invalid output formats")
	}

	assignment, ok := pbr.AssignmentByName(*table)
	if !ok {
		return pbr.Options{}, errors.Errorf("unknown channel mapping table: %s", *table)
	}

	policy := pbr.SkipFailedSets
	if *strict {
		policy = pbr.AbortOnFailure
	}

	return pbr.Options{
		InputDir:        *inputDir,
		ResultDir:       *resultDir,
		Formats:         outputFormats,
		Assignment:      assignment,
		Policy:          policy,
		StopOnSaveError: !*robust,
	}, nil
}

func main() {
	flag.Parse()

	opts, err := conversionOptions()
	if err != nil {
		glg.Fatal(err)
	}

	glg.Fatal(newServer(service.NewManager(opts)).Start(*addr))
}
