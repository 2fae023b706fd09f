package interactor

// Changes tracks which parts of an Interactor's view are stale since the
// last time the embedding client drained them, so a UI can re-render only
// what actually changed.
type Changes struct {
	layer    bool
	role     bool
	sprite   bool
	selected bool
	scene    bool
}

func newChanges() Changes {
	return Changes{layer: true, role: true, sprite: true, selected: true, scene: true}
}

func (c *Changes) allChange() {
	c.layer = true
	c.sprite = true
	c.selected = true
	c.scene = true
}

func (c *Changes) layerChange()         { c.layer = true }
func (c *Changes) layerChangeIf(b bool) { c.layer = c.layer || b }

// TakeLayer reports and clears the pending layer-list change flag.
func (c *Changes) TakeLayer() bool { return takeAndClear(&c.layer) }

func (c *Changes) roleChange()         { c.role = true }
func (c *Changes) roleChangeIf(b bool) { c.role = c.role || b }

// TakeRole reports and clears the pending role change flag.
func (c *Changes) TakeRole() bool { return takeAndClear(&c.role) }

func (c *Changes) spriteChange()         { c.sprite = true }
func (c *Changes) spriteChangeIf(b bool) { c.sprite = c.sprite || b }

// TakeSprite reports and clears the pending sprite re-render flag.
func (c *Changes) TakeSprite() bool { return takeAndClear(&c.sprite) }

func (c *Changes) selectedChangeIf(b bool) { c.selected = c.selected || b }

// TakeSelected reports and clears the pending selected-sprite change flag.
func (c *Changes) TakeSelected() bool { return takeAndClear(&c.selected) }

func (c *Changes) spriteSelectedChange() {
	c.sprite = true
	c.selected = true
}

func (c *Changes) sceneChange() { c.scene = true }

// TakeScene reports and clears the pending scene-list change flag.
func (c *Changes) TakeScene() bool { return takeAndClear(&c.scene) }

func takeAndClear(b *bool) bool {
	v := *b
	*b = false
	return v
}
