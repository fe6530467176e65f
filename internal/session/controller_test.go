package session

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/philipparndt/gowp/internal/document"
	"github.com/philipparndt/gowp/pkg/geometry"
	"github.com/philipparndt/gowp/pkg/viewer"
	"github.com/philipparndt/gowp/pkg/workplane"
)

func beCloseTo(v geometry.Vector3) OmegaMatcher {
	return WithTransform(func(got geometry.Vector3) bool {
		return got.ApproxEqual(v, 1e-9)
	}, BeTrue())
}

var _ = Describe("Controller", func() {
	var (
		doc   *document.Document
		c     *Controller
		store *memStore
	)

	BeforeEach(func() {
		doc, c, store = newFixture()
	})

	Describe("activation", func() {
		It("starts idle with the weak default plane", func() {
			Expect(c.State()).To(Equal(Idle))
			Expect(c.Plane().Weak).To(BeTrue())
			Expect(c.HistoryLen()).To(Equal(0))
		})

		It("records the current plane as the first history entry", func() {
			Expect(c.Activate()).To(Succeed())
			Expect(c.State()).To(Equal(AwaitingSelection))
			Expect(c.HistoryLen()).To(Equal(1))
		})

		It("loads the stored preferences", func() {
			store.prefs.SnapRadius = 15
			Expect(c.Activate()).To(Succeed())
			Expect(c.Preferences().SnapRadius).To(Equal(15))
		})

		It("keeps the previous preferences when loading fails", func() {
			store.err = errors.New("disk on fire")
			Expect(c.Activate()).To(Succeed())
			Expect(c.Preferences().GridMainLine).To(Equal(10))
		})

		It("uses an existing selection right away", func() {
			Expect(doc.Select("Sheet")).To(Succeed())
			Expect(c.Activate()).To(Succeed())

			Expect(c.State()).To(Equal(Idle))
			Expect(c.Plane().Origin).To(beCloseTo(geometry.NewVector3(0, 0, 2)))
			Expect(c.HistoryLen()).To(Equal(2))
		})

		It("keeps history across activations", func() {
			Expect(c.Activate()).To(Succeed())
			Expect(c.OnCanonicalButton(workplane.Front, 0)).To(Succeed())
			Expect(c.Activate()).To(Succeed())
			Expect(c.HistoryLen()).To(Equal(2))
		})
	})

	Describe("picking three points", func() {
		It("solves the plane one queue iteration after the pointer event", func() {
			Expect(c.Activate()).To(Succeed())
			Expect(doc.Select("Box", "Vertex1", "Vertex2", "Vertex3")).To(Succeed())

			c.OnPointerDown()
			Expect(c.State()).To(Equal(AwaitingSelection))
			Expect(c.Queue().Len()).To(Equal(1))

			Expect(c.Queue().Drain()).To(Equal(1))
			Expect(c.State()).To(Equal(Idle))
			Expect(c.Plane().Normal).To(beCloseTo(geometry.UnitZ))
			Expect(c.Plane().Origin).To(beCloseTo(geometry.Vector3{}))
			Expect(c.Status().Label).To(Equal("Custom"))
			Expect(c.Status().Text).To(ContainSubstring("(0.0,0.0,1.0)"))
		})

		It("sees a selection completed after the pointer event", func() {
			Expect(c.Activate()).To(Succeed())
			c.OnPointerDown()
			Expect(doc.Select("Box", "Vertex1", "Vertex2", "Vertex3")).To(Succeed())

			c.Queue().Drain()
			Expect(c.Plane().Normal).To(beCloseTo(geometry.UnitZ))
		})

		It("accepts vertices spread over several objects", func() {
			_, err := doc.Add(document.Object{Name: "Peg", Vertices: []geometry.Vector3{geometry.NewVector3(0, 0, 1)}})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Activate()).To(Succeed())
			Expect(doc.Select("Box", "Vertex1", "Vertex2")).To(Succeed())
			Expect(doc.Select("Peg", "Vertex1")).To(Succeed())

			Expect(c.CheckSelection()).To(Succeed())
			Expect(c.Plane().Normal).To(beCloseTo(geometry.NewVector3(0, -1, 0)))
		})

		It("keeps waiting on collinear points", func() {
			Expect(c.Activate()).To(Succeed())
			before := c.Plane()

			err := c.OnSelectionMade(workplane.ThreePoints{
				P0: geometry.NewVector3(0, 0, 0),
				P1: geometry.NewVector3(1, 1, 1),
				P2: geometry.NewVector3(2, 2, 2),
			})
			Expect(errors.Is(err, workplane.ErrDegenerateGeometry)).To(BeTrue())
			Expect(c.State()).To(Equal(AwaitingSelection))
			Expect(c.Plane()).To(Equal(before))
			Expect(c.HistoryLen()).To(Equal(1))
		})

		It("ignores pointer events while idle", func() {
			c.OnPointerDown()
			Expect(c.Queue().Len()).To(Equal(0))
		})
	})

	Describe("canonical buttons", func() {
		BeforeEach(func() {
			Expect(c.Activate()).To(Succeed())
		})

		It("applies Top with an offset", func() {
			Expect(c.OnCanonicalButton(workplane.Top, 5)).To(Succeed())

			Expect(c.Plane().Normal).To(beCloseTo(geometry.UnitZ))
			Expect(c.Plane().Origin).To(beCloseTo(geometry.NewVector3(0, 0, 5)))
			Expect(c.Status().Label).To(Equal("Top +O"))
			Expect(c.Status().Text).To(Equal("Current working plane: Top +O Offset: 5.0 Dir: (0.0,0.0,1.0)"))
			Expect(c.State()).To(Equal(Idle))
		})

		It("applies Front without an offset", func() {
			Expect(c.OnCanonicalButton(workplane.Front, 0)).To(Succeed())
			Expect(c.Plane().Normal).To(beCloseTo(geometry.NewVector3(0, -1, 0)))
			Expect(c.Status().Text).To(Equal("Current working plane: Front Dir: (0.0,-1.0,0.0)"))
		})

		It("marks negative offsets", func() {
			Expect(c.OnCanonicalButton(workplane.Side, -2.5)).To(Succeed())
			Expect(c.Status().Label).To(Equal("Side -O"))
			Expect(c.Plane().Origin).To(beCloseTo(geometry.NewVector3(-2.5, 0, 0)))
		})

		It("centers the plane under the camera when enabled", func() {
			c.SetCenterPlaneOnView(true)
			cam := doc.Camera()
			cam.Position = geometry.NewVector3(3, 4, 10)
			doc.SetCamera(cam)

			Expect(c.OnCanonicalButton(workplane.Top, 0)).To(Succeed())
			Expect(c.Plane().Origin).To(beCloseTo(geometry.NewVector3(3, 4, 0)))
			Expect(store.prefs.CenterPlaneOnView).To(BeTrue())
		})

		It("is rejected while idle", func() {
			Expect(c.OnCanonicalButton(workplane.Top, 0)).To(Succeed())
			Expect(c.OnCanonicalButton(workplane.Top, 0)).To(MatchError(ErrNotActive))
		})

		It("rejects unknown directions and keeps waiting", func() {
			err := c.OnCanonicalButton(workplane.Direction(0), 0)
			Expect(errors.Is(err, workplane.ErrNoSelection)).To(BeTrue())
			Expect(c.State()).To(Equal(AwaitingSelection))
		})
	})

	Describe("previous", func() {
		It("does nothing with a single entry", func() {
			Expect(c.Activate()).To(Succeed())
			before := c.Plane()

			Expect(c.OnPrevious()).To(Succeed())
			Expect(c.Plane()).To(Equal(before))
			Expect(c.State()).To(Equal(AwaitingSelection))
		})

		It("returns to the plane before the last change", func() {
			Expect(c.Activate()).To(Succeed())
			first := c.Plane()
			Expect(c.OnCanonicalButton(workplane.Front, 0)).To(Succeed())

			Expect(c.Activate()).To(Succeed())
			Expect(c.OnPrevious()).To(Succeed())

			Expect(c.Plane()).To(Equal(first))
			Expect(c.HistoryLen()).To(Equal(1))
			Expect(c.State()).To(Equal(Idle))
			Expect(c.Status().Text).To(ContainSubstring("Dir: (0.0,0.0,1.0)"))
		})
	})

	Describe("cancel", func() {
		It("restores the plane active at activation", func() {
			Expect(c.Activate()).To(Succeed())
			before := c.Plane()

			Expect(c.OnEscape()).To(Succeed())
			Expect(c.State()).To(Equal(Idle))
			Expect(c.Plane()).To(Equal(before))
			Expect(c.HistoryLen()).To(Equal(1))
		})

		It("is rejected while idle", func() {
			Expect(c.Cancel()).To(MatchError(ErrNotActive))
		})
	})

	Describe("objects", func() {
		BeforeEach(func() {
			Expect(c.Activate()).To(Succeed())
		})

		It("uses a picked face with the session offset", func() {
			c.SetOffset(1)
			Expect(doc.Select("Box", "Face1")).To(Succeed())
			Expect(c.CheckSelection()).To(Succeed())

			Expect(c.Plane().Normal).To(beCloseTo(geometry.NewVector3(0, -1, 0)))
			Expect(c.Plane().Origin).To(beCloseTo(geometry.NewVector3(1, -1, 1)))
		})

		It("aligns to an axis", func() {
			Expect(doc.Select("Axis")).To(Succeed())
			Expect(c.CheckSelection()).To(Succeed())

			Expect(c.Plane().U).To(beCloseTo(geometry.UnitX))
			Expect(c.Plane().V).To(beCloseTo(geometry.UnitY))
			Expect(c.Plane().Normal).To(beCloseTo(geometry.UnitZ))
		})

		It("takes a section plane with its label", func() {
			Expect(doc.Select("Section")).To(Succeed())
			Expect(c.CheckSelection()).To(Succeed())

			Expect(c.Plane().Origin).To(beCloseTo(geometry.NewVector3(0, 0, 3)))
			Expect(c.Plane().Weak).To(BeFalse())
			Expect(c.Status()).To(Equal(Status{Label: "Cut A", Text: "Current working plane: Cut A"}))
		})

		It("restores the view stored with a proxy", func() {
			saved := doc.Camera()
			plane, err := workplane.FromNormal(geometry.NewVector3(1, 1, 1), geometry.UnitX, 0)
			Expect(err).NotTo(HaveOccurred())
			proxy, err := doc.AddProxy("Level 1", plane)
			Expect(err).NotTo(HaveOccurred())

			moved := saved
			moved.Position = geometry.NewVector3(50, 50, 50)
			doc.SetCamera(moved)
			doc.SetVisibility("Box", false)

			Expect(doc.Select(proxy.Name)).To(Succeed())
			Expect(c.CheckSelection()).To(Succeed())

			Expect(c.Plane().Normal).To(beCloseTo(geometry.UnitX))
			Expect(c.Plane().Origin).To(beCloseTo(geometry.NewVector3(1, 1, 1)))
			Expect(doc.Camera().Position).To(beCloseTo(saved.Position))
			box, _ := doc.Object("Box")
			Expect(box.Visible).To(BeTrue())
			Expect(c.Status().Label).To(Equal("Level 1"))
		})

		It("keeps waiting on an unusable selection", func() {
			Expect(doc.Select("Box", "Vertex1")).To(Succeed())
			err := c.CheckSelection()
			Expect(errors.Is(err, workplane.ErrNoSelection)).To(BeTrue())
			Expect(c.State()).To(Equal(AwaitingSelection))
		})
	})

	Describe("panel buttons", func() {
		BeforeEach(func() {
			Expect(c.Activate()).To(Succeed())
		})

		It("aligns the plane to the view", func() {
			front, _ := workplane.Solve(workplane.Canonical{Direction: workplane.Front}, 0)
			doc.SetCamera(viewer.AlignCamera(doc.Camera(), front, false))

			Expect(c.OnAlignToView()).To(Succeed())
			Expect(c.Plane().Normal).To(beCloseTo(geometry.NewVector3(0, -1, 0)))
			Expect(c.Plane().V).To(beCloseTo(geometry.UnitZ))
			Expect(c.Status().Text).To(Equal("Current working plane: (0.0,-1.0,0.0) Dir: (0.0,-1.0,0.0)"))
		})

		It("resets to the automatic plane", func() {
			Expect(c.OnAuto()).To(Succeed())
			Expect(c.Plane().Weak).To(BeTrue())
			Expect(c.Status().Label).To(Equal("Auto"))
		})

		It("moves the origin to a selected vertex", func() {
			Expect(doc.Select("Box", "Vertex4")).To(Succeed())
			Expect(c.OnMove()).To(Succeed())

			Expect(c.Plane().Origin).To(beCloseTo(geometry.NewVector3(5, 5, 5)))
			Expect(c.Plane().Normal).To(beCloseTo(geometry.UnitZ))
			Expect(c.Status().Text).To(HavePrefix("Current working plane: (5.0,5.0,5.0)"))
		})

		It("moves the origin under the camera without a selection", func() {
			cam := doc.Camera()
			cam.Position = geometry.NewVector3(-2, 7, 30)
			doc.SetCamera(cam)

			Expect(c.OnMove()).To(Succeed())
			Expect(c.Plane().Origin).To(beCloseTo(geometry.NewVector3(-2, 7, 0)))
		})

		It("refuses to move to several vertices", func() {
			Expect(doc.Select("Box", "Vertex1", "Vertex2")).To(Succeed())
			Expect(errors.Is(c.OnMove(), workplane.ErrNoSelection)).To(BeTrue())
			Expect(c.State()).To(Equal(AwaitingSelection))
		})

		It("centers the camera on the plane without changing it", func() {
			front, _ := workplane.Solve(workplane.Canonical{Direction: workplane.Front}, 0)
			Expect(c.OnCanonicalButton(workplane.Front, 0)).To(Succeed())
			Expect(c.Activate()).To(Succeed())
			entries := c.HistoryLen()

			Expect(c.OnCenter()).To(Succeed())
			Expect(doc.Camera().ViewDirection()).To(beCloseTo(geometry.NewVector3(0, 1, 0)))
			Expect(c.Plane()).To(Equal(front))
			Expect(c.HistoryLen()).To(Equal(entries))
		})
	})

	Describe("settings", func() {
		It("ignores main line intervals of one or less", func() {
			c.SetGridMainLine(1)
			Expect(c.Preferences().GridMainLine).To(Equal(10))
			Expect(store.saves).To(Equal(0))

			c.SetGridMainLine(4)
			Expect(c.Preferences().GridMainLine).To(Equal(4))
			Expect(store.prefs.GridMainLine).To(Equal(4))
			Expect(doc.Grid().MainLine).To(Equal(4))
		})

		It("parses grid spacing lengths", func() {
			Expect(c.SetGridSpacingText("2 cm")).To(Succeed())
			Expect(c.Preferences().GridSpacing).To(Equal(20.0))
			Expect(doc.Grid().Spacing).To(Equal(20.0))

			Expect(c.SetGridSpacingText("wide")).NotTo(Succeed())
			Expect(c.SetGridSpacingText("0")).NotTo(Succeed())
			Expect(c.Preferences().GridSpacing).To(Equal(20.0))
		})

		It("parses offsets", func() {
			Expect(c.SetOffsetText("1 in")).To(Succeed())
			Expect(c.Offset()).To(Equal(25.4))
			Expect(c.SetOffsetText("far")).NotTo(Succeed())
			Expect(c.Offset()).To(Equal(25.4))
		})

		It("stores the snap radius", func() {
			c.SetSnapRadius(12)
			Expect(store.prefs.SnapRadius).To(Equal(12))
		})

		It("takes over reloaded preferences", func() {
			p := c.Preferences()
			p.GridSpacing = 5
			c.ApplyPreferences(p)
			Expect(doc.Grid().Spacing).To(Equal(5.0))

			p.GridSpacing = -1
			c.ApplyPreferences(p)
			Expect(c.Preferences().GridSpacing).To(Equal(5.0))
		})
	})

	Describe("change notifications", func() {
		It("notifies listeners on plane changes", func() {
			calls := 0
			c.OnChange(func() { calls++ })
			Expect(c.Activate()).To(Succeed())
			Expect(c.OnCanonicalButton(workplane.Top, 0)).To(Succeed())
			Expect(calls).To(BeNumerically(">=", 2))
		})
	})
})

var _ = Describe("Guard", func() {
	It("serializes access", func() {
		_, c, _ := newFixture()
		g := NewGuard(c)

		Expect(g.Do(func(c *Controller) error { return c.Activate() })).To(Succeed())
		Expect(g.Do(func(c *Controller) error { c.OnPointerDown(); return nil })).To(Succeed())
		Expect(g.Drain()).To(Equal(1))
	})
})
