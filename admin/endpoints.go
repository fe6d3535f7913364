package admin

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/difflow/version"
)

func (s *Server) handleGraphTopology(c *gin.Context) {
	c.JSON(http.StatusOK, snapshotTopology(s.g))
}

// handleProbe answers GET /probe?output=<name>&frontier=<spec>, reporting
// whether the named output handle's frontier has advanced past the given
// target. frontier is a semicolon-separated list of comma-separated
// coordinate tuples, e.g. "1,0;0,2" for a two-element antichain.
func (s *Server) handleProbe(c *gin.Context) {
	name := c.Query("output")
	p, ok := s.probers[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such output: " + name})
		return
	}

	target, err := parseFrontier(c.Query("frontier"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"output":           name,
		"current":          p.Frontier().String(),
		"target":           target.String(),
		"less_than_target": p.ProbeFrontierLessThan(target),
	})
}

func parseFrontier(spec string) (version.Frontier, error) {
	if spec == "" {
		return version.Empty(), nil
	}
	var elems []version.Version
	for _, part := range strings.Split(spec, ";") {
		coordStrs := strings.Split(part, ",")
		coords := make([]int, 0, len(coordStrs))
		for _, cs := range coordStrs {
			n, err := strconv.Atoi(strings.TrimSpace(cs))
			if err != nil {
				return version.Frontier{}, err
			}
			coords = append(coords, n)
		}
		elems = append(elems, version.New(coords...))
	}
	return version.NewFrontier(elems...), nil
}
