package ecs

import (
	"fmt"

	"ebiten-rally/geom"
)

// recorder logs every hook into a shared journal
type recorder struct {
	Base
	label   string
	journal *[]string
}

func (r *recorder) note(hook string) {
	*r.journal = append(*r.journal, fmt.Sprintf("%s.%s", r.label, hook))
}

func (r *recorder) OnAttach(*Entity)          { r.note("OnAttach") }
func (r *recorder) OnDetach(*Entity)          { r.note("OnDetach") }
func (r *recorder) Awake()                    { r.note("Awake") }
func (r *recorder) Start()                    { r.note("Start") }
func (r *recorder) Update(*Frame)             { r.note("Update") }
func (r *recorder) FixedUpdate(*Frame)        { r.note("FixedUpdate") }
func (r *recorder) OnEnable()                 { r.note("OnEnable") }
func (r *recorder) OnDisable()                { r.note("OnDisable") }
func (r *recorder) OnDestroy()                { r.note("OnDestroy") }
func (r *recorder) OnAddedToScene(*Scene)     { r.note("OnAddedToScene") }
func (r *recorder) OnRemovedFromScene(*Scene) { r.note("OnRemovedFromScene") }

// second and third are distinct component types sharing the recorder hooks
type second struct{ recorder }
type third struct{ recorder }

// behaviour is an object script that records like a component
type behaviour struct{ recorder }

func newRecorder(label string, journal *[]string) *recorder {
	return &recorder{label: label, journal: journal}
}

func count(journal []string, entry string) int {
	n := 0
	for _, j := range journal {
		if j == entry {
			n++
		}
	}
	return n
}

func index(journal []string, entry string) int {
	for i, j := range journal {
		if j == entry {
			return i
		}
	}
	return -1
}

type health struct {
	Current int
}

type panicker struct{ hook string }

func (p *panicker) Awake() {
	if p.hook == "Awake" {
		panic("awake failed")
	}
}

func (p *panicker) OnDestroy() {
	if p.hook == "OnDestroy" {
		panic("destroy failed")
	}
}

func (p *panicker) Update(*Frame) {
	if p.hook == "Update" {
		panic("update failed")
	}
}

// fakeMesh counts transform pushes
type fakeMesh struct {
	pushes   int
	last     geom.Transform
	disposed int
}

func (m *fakeMesh) SetTransform(t geom.Transform) {
	m.pushes++
	m.last = t
}

func (m *fakeMesh) Dispose() { m.disposed++ }
